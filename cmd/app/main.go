package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/easyrent/vehiclerental/api"
	"github.com/easyrent/vehiclerental/config"
	"github.com/easyrent/vehiclerental/internal/bootstrap"
	"github.com/easyrent/vehiclerental/internal/cache"
	"github.com/easyrent/vehiclerental/internal/captcha"
	"github.com/easyrent/vehiclerental/internal/chat"
	"github.com/easyrent/vehiclerental/internal/kafka"
	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/easyrent/vehiclerental/internal/repository"
	"github.com/easyrent/vehiclerental/internal/routing"
	"github.com/easyrent/vehiclerental/internal/service/booking"
	"github.com/easyrent/vehiclerental/internal/service/feedback"
	"github.com/easyrent/vehiclerental/internal/service/users"
	"github.com/easyrent/vehiclerental/internal/service/vehicles"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New("vehiclerental-api", "ERROR", os.Stderr).Error("load config", err)
		os.Exit(1)
	}
	log := logger.New("vehiclerental-api", cfg.Log.Level, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Error("server error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.HTTP.UploadDir, 0o755); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.VehiclesCacheTTL)*time.Second)
	defer redisCache.Close()
	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)

	captchaService := captcha.NewService(redisCache, time.Duration(cfg.Booking.CaptchaTTLSeconds)*time.Second)
	routingClient := routing.NewClient(cfg.Routing.BaseURL, cfg.Routing.APIKey, time.Duration(cfg.Routing.TimeoutSeconds)*time.Second)

	userService := users.NewUserService(userRepo, redisCache, captchaService,
		users.WithSessionTTL(cfg.Session.TTL()),
		users.WithLogger(log),
	)
	vehicleService := vehicles.NewVehicleService(vehicleRepo, redisCache, log)
	feedbackService := feedback.NewFeedbackService(feedbackRepo, bookingRepo)
	bookingService := booking.NewBookingService(
		bookingRepo,
		vehicleRepo,
		captchaService,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.PaymentWindowMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(log),
		booking.WithLocation(loc),
	)
	orchestrator := booking.NewOrchestrator(
		redisCache,
		vehicleRepo,
		routingClient,
		captchaService,
		bookingService,
		time.Duration(cfg.Booking.AttemptTTLMinutes)*time.Minute,
		booking.WithPricingLocation(loc),
	)

	if cfg.Log.Level != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	cookie := api.SessionCookie{Name: cfg.Session.CookieName, TTL: cfg.Session.TTL(), Secure: cfg.Session.Secure}
	router, err := api.NewRouter(api.RouterConfig{
		AllowedOrigin: cfg.HTTP.AllowedOrigin,
		UploadDir:     cfg.HTTP.UploadDir,
		SwaggerDir:    cfg.HTTP.SwaggerDir,
		Cookie:        cookie,
	}, api.Services{
		Users:    api.NewUserHandler(userService, cookie, cfg.HTTP.UploadDir),
		Vehicles: api.NewVehicleHandler(vehicleService, feedbackService),
		Places:   api.NewLocationHandler(routingClient, captchaService),
		Bookings: api.NewBookingHandler(bookingService, loc),
		Attempts: api.NewAttemptHandler(orchestrator, loc),
		Chat:     api.NewChatHandler(chat.NewAssistant(vehicleService)),
		Sessions: userService,
	}, log)
	if err != nil {
		return err
	}

	checks := map[string]bootstrap.Check{
		"postgres": pool.Ping,
		"redis":    redisCache.Ping,
		"kafka":    producer.CheckConnection,
	}
	return bootstrap.Run(ctx, cfg, router, checks, log)
}
