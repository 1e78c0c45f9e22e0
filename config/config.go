package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Session  SessionConfig  `yaml:"session"`
	Booking  BookingConfig  `yaml:"booking"`
	Routing  RoutingConfig  `yaml:"routing"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address       string `yaml:"address"`
	SwaggerDir    string `yaml:"swagger_dir"`
	UploadDir     string `yaml:"upload_dir"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	TTLHours   int    `yaml:"ttl_hours"`
	Secure     bool   `yaml:"secure"`
}

type BookingConfig struct {
	TimeZone             string `yaml:"time_zone"`
	AttemptTTLMinutes    int    `yaml:"attempt_ttl_minutes"`
	PaymentWindowMinutes int    `yaml:"payment_window_minutes"`
	VehiclesCacheTTL     int    `yaml:"vehicles_cache_ttl_seconds"`
	CaptchaTTLSeconds    int    `yaml:"captcha_ttl_seconds"`
}

type RoutingConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type WorkerConfig struct {
	ReconcileSweepMinutes int `yaml:"reconcile_sweep_minutes"`
	ConfirmGraceMinutes   int `yaml:"confirm_grace_minutes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if key := os.Getenv("ORS_API_KEY"); key != "" {
		cfg.Routing.APIKey = key
	}

	return cfg, nil
}

// Default returns the values used for any key the config file leaves out.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:       ":5000",
			UploadDir:     "uploads",
			AllowedOrigin: "http://localhost:5173",
		},
		GRPC: GRPCConfig{Address: ":5001"},
		Session: SessionConfig{
			CookieName: "sid",
			TTLHours:   24,
		},
		Booking: BookingConfig{
			TimeZone:             "Asia/Kolkata",
			AttemptTTLMinutes:    30,
			PaymentWindowMinutes: 15,
			VehiclesCacheTTL:     60,
			CaptchaTTLSeconds:    300,
		},
		Routing: RoutingConfig{
			BaseURL:        "https://api.openrouteservice.org",
			TimeoutSeconds: 10,
		},
		Worker: WorkerConfig{ReconcileSweepMinutes: 5, ConfirmGraceMinutes: 2},
		Log:    LogConfig{Level: "INFO"},
	}
}

func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (b BookingConfig) Location() (*time.Location, error) {
	if b.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(b.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", b.TimeZone, err)
	}
	return loc, nil
}
