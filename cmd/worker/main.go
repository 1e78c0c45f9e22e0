package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/easyrent/vehiclerental/config"
	"github.com/easyrent/vehiclerental/internal/cache"
	"github.com/easyrent/vehiclerental/internal/captcha"
	"github.com/easyrent/vehiclerental/internal/email"
	"github.com/easyrent/vehiclerental/internal/kafka"
	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/easyrent/vehiclerental/internal/repository"
	"github.com/easyrent/vehiclerental/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
)

const publishRetries = 3

// retryingProducer makes the worker's own status events survive short broker hiccups.
type retryingProducer struct {
	*kafka.Producer
}

func (p retryingProducer) Publish(ctx context.Context, topic, key string, value any) error {
	return p.PublishWithRetry(ctx, topic, key, value, publishRetries)
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New("vehiclerental-worker", "ERROR", os.Stderr).Error("load config", err)
		os.Exit(1)
	}
	log := logger.New("vehiclerental-worker", cfg.Log.Level, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Error("worker error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.VehiclesCacheTTL)*time.Second)
	defer redisCache.Close()
	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		repository.NewVehicleRepository(pool),
		captcha.NewService(redisCache, time.Duration(cfg.Booking.CaptchaTTLSeconds)*time.Second),
		retryingProducer{producer},
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Booking.PaymentWindowMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithConfirmGrace(time.Duration(cfg.Worker.ConfirmGraceMinutes)*time.Minute),
		booking.WithLogger(log),
		booking.WithLocation(loc),
	)
	sender := email.NewSender(repository.NewUserRepository(pool), email.NewLogTransport(log))

	confirmations := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-confirmations", cfg.Kafka.BookingEventsTopic)
	defer confirmations.Close()
	notifications := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-notifications", cfg.Kafka.NotificationsTopic)
	defer notifications.Close()

	var wg sync.WaitGroup
	consume := func(name string, c *kafka.Consumer, handle func(context.Context, kafka.BookingEvent) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clog := log.Action(name)
			if err := c.Consume(ctx, kafka.EventHandler(clog, handle)); err != nil && ctx.Err() == nil {
				clog.Error("consumer stopped", err)
				stop()
			}
		}()
	}

	consume("confirm_bookings", confirmations, func(ctx context.Context, event kafka.BookingEvent) error {
		if event.Type != kafka.EventBookingPaid {
			return nil
		}
		_, err := bookingService.ConfirmBooking(ctx, event.BookingID)
		return err
	})
	consume("notify", notifications, sender.Send)

	sweepLog := log.Action("reconcile_sweep")
	sweep := time.NewTicker(time.Duration(cfg.Worker.ReconcileSweepMinutes) * time.Minute)
	defer sweep.Stop()

	log.Info("worker started", "booking_topic", cfg.Kafka.BookingEventsTopic, "notifications_topic", cfg.Kafka.NotificationsTopic)
	for {
		select {
		case <-sweep.C:
			if _, err := bookingService.AbandonStalePayments(ctx); err != nil {
				sweepLog.Error("abandon stale payments", err)
			}
			// paid bookings whose booking_paid event was lost
			if _, err := bookingService.ConfirmStalePayments(ctx); err != nil {
				sweepLog.Error("confirm stale payments", err)
			}
		case <-ctx.Done():
			log.Info("shutting down")
			wg.Wait()
			return nil
		}
	}
}
