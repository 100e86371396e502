package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "bookingpt/docs"

	"bookingpt/internal/availability"
	"bookingpt/internal/booking"
	"bookingpt/internal/config"
	"bookingpt/internal/db"
	"bookingpt/internal/event"
	"bookingpt/internal/logger"
	"bookingpt/internal/policy"
	"bookingpt/internal/rates"
	"bookingpt/internal/server"

	"github.com/redis/go-redis/v9"
)

// @title BookingPT API
// @version 1.0
// @description API for the personal trainer availability and booking system.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting BookingPT application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	var slotCache *availability.SlotCache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("Redis unavailable, slot listings will not be cached", "error", err)
	} else {
		slotCache = availability.NewSlotCache(redisClient, cfg.SlotCacheTTL)
		defer redisClient.Close()
		logger.Info("Redis connected")
	}

	var emitter event.Emitter = event.LogEmitter{}
	if cfg.AMQPURL != "" {
		rmq, err := event.NewRabbitMQEmitter(cfg.AMQPURL)
		if err != nil {
			logger.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rmq.Close()
		emitter = rmq
		logger.Info("RabbitMQ connected")
	}

	slotRepo := availability.NewRepository(database)
	slotService := availability.NewService(slotRepo, slotCache)

	rateRepo := rates.NewRepository(database)

	bookingRepo := booking.NewRepository(database, slotRepo)
	bookingPolicy := policy.New(cfg.CancellationCutoff)
	bookingService := booking.NewService(bookingRepo, slotRepo, rateRepo, bookingPolicy, emitter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := booking.NewSweeper(bookingService, cfg.SweepInterval)
	go sweeper.Run(ctx)

	srv := server.New(cfg, server.Handlers{
		Slots:    availability.NewHandler(slotService),
		Bookings: booking.NewHandler(bookingService),
		Rates:    rates.NewHandler(rateRepo),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
