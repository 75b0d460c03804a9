package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"booking-rooms-backend/config"
	"booking-rooms-backend/internal/api"
	"booking-rooms-backend/internal/auth"
	"booking-rooms-backend/internal/booking"
	"booking-rooms-backend/internal/db"
	"booking-rooms-backend/internal/holiday"
	"booking-rooms-backend/internal/model"
	"booking-rooms-backend/internal/notification"
	"booking-rooms-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "booking-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded from %s", configPath)

	if cfg.JWT.Secret == "" {
		logger.Fatalf("jwt.secret must be configured")
	}

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		logger.Fatalf("invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	if err := seedAdmin(ctx, appStore, cfg.AdminSeed); err != nil {
		logger.Fatalf("failed to seed admin user: %v", err)
	}

	oracle := holiday.NewOracle(
		holiday.NewClient(cfg.Holiday.BaseURL, cfg.Holiday.Timeout),
		cfg.Holiday.CacheTTL,
	)
	bookingSvc := booking.NewService(appStore, oracle, cfg.Holiday.CountryCode, loc)

	var (
		webpushOptions *webpush.Options
		notifier       *notification.WorkerPool
	)
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		notifier = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		notifier.Start(ctx)
		logger.Printf("notification worker pool started (size %d)", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; freed-slot notifications disabled")
	}

	handler := api.NewHandler(appStore, bookingSvc, notifier, webpushOptions, cfg.JWT)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("server gracefully stopped")
}

// seedAdmin ensures the default administrator account exists.
func seedAdmin(ctx context.Context, s store.Store, seed config.AdminSeedConfig) error {
	if seed.Email == "" || seed.Password == "" {
		log.Println("admin_seed not configured; skipping")
		return nil
	}

	if _, err := s.GetUserByEmail(ctx, seed.Email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return err
	}

	return s.CreateUser(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        seed.Email,
		DisplayName:  seed.Email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
}
