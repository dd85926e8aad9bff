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
	"github.com/joho/godotenv"

	"github.com/augesrob/Badger-sub000/config"
	"github.com/augesrob/Badger-sub000/internal/api"
	"github.com/augesrob/Badger-sub000/internal/db"
	"github.com/augesrob/Badger-sub000/internal/notification"
	"github.com/augesrob/Badger-sub000/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "badgerd ", log.LstdFlags)

	if err := godotenv.Load(); err != nil {
		logger.Println("No .env file found (using environment variables)")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
		}
		logger.Printf("no configuration at %s, using defaults", configPath)
		cfg = config.Default()
	} else {
		logger.Printf("configuration loaded successfully from %s", configPath)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var (
		dispatcher     api.Dispatcher
		webpushOptions *webpush.Options
	)
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("push.enabled is set but VAPID keys are missing. Please generate them and add them to your config file.")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		dispatcher = pool
		logger.Printf("notification worker pool started with %d workers", cfg.WorkerPool.Size)
	}

	router := api.NewRouter(appStore, dispatcher, webpushOptions, cfg.Server)
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
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
