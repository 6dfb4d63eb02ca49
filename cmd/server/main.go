package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/tartanair/va-backend/internal/api"
	"github.com/tartanair/va-backend/internal/auth"
	"github.com/tartanair/va-backend/internal/config"
	"github.com/tartanair/va-backend/internal/db"
	"github.com/tartanair/va-backend/internal/db/migrations"
	"github.com/tartanair/va-backend/internal/nats"
	"github.com/tartanair/va-backend/internal/redis"
	"github.com/tartanair/va-backend/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Apply pending migrations and seed the route catalog
	migrator := migrations.New(sqlDB)
	if err := migrator.Migrate([]*migrations.Migration{migrations.InitialSchema}); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	store := db.NewWithDB(sqlDB)
	if err := store.EnsureRoutes(db.RouteCatalog); err != nil {
		log.Fatalf("Failed to seed routes: %v", err)
	}

	// Optional last-position cache
	var cache tracker.Cache
	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(cfg.RedisAddr)
		if err != nil {
			log.Printf("Warning: Redis unavailable, live view will hit the database: %v", err)
		} else {
			defer redisClient.Close()
			cache = redisClient
		}
	}

	// Optional telemetry bus
	var bus tracker.Bus
	if cfg.NATSURL != "" {
		natsClient, err := nats.New(cfg.NATSURL)
		if err != nil {
			log.Printf("Warning: NATS unavailable, position reports will not be published: %v", err)
		} else {
			defer natsClient.Close()
			bus = natsClient
		}
	}

	trk := tracker.New(store, cache, bus)
	authSvc := auth.New(cfg.SecretKey, cfg.TokenTTL)
	server := api.NewServer(store, authSvc, trk)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trk.Stats().StartLogging(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Router(cfg.CORSOrigins),
	}

	go func() {
		log.Printf("Listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}
