package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/penaltybox/officials-stats-service/internal/api"
	"github.com/penaltybox/officials-stats-service/internal/config"
	"github.com/penaltybox/officials-stats-service/internal/feed"
	"github.com/penaltybox/officials-stats-service/internal/ingest"
	"github.com/penaltybox/officials-stats-service/internal/publisher"
	"github.com/penaltybox/officials-stats-service/internal/registry"
	"github.com/penaltybox/officials-stats-service/internal/scheduler"
	"github.com/penaltybox/officials-stats-service/internal/service"
	"github.com/penaltybox/officials-stats-service/internal/store"
)

func main() {
	log.Println("Starting Officials Stats Service...")

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	leagues := registry.New()
	log.Printf("Registered leagues: %v", leagues.AllLeagueKeys())

	st, redisClient, cleanup, err := buildStore(ctx, cfg, leagues)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Store.Backend, err)
	}
	defer cleanup()
	log.Printf("Using %s store backend", cfg.Store.Backend)

	// The publisher rides the Redis connection when one exists; otherwise
	// events are dropped.
	var pub *publisher.StreamPublisher
	if redisClient != nil {
		pub = publisher.NewStreamPublisher(redisClient)
	}

	feedClient := feed.NewWithRetries(cfg.Fetch.RetryAttempts, cfg.Fetch.RetryDelay)
	orchestrator := ingest.New(feedClient, leagues, cfg.Fetch.Concurrency)
	ingestion := service.NewIngestion(orchestrator, leagues, st, pub)

	if cfg.Scheduler.Enabled {
		daily := scheduler.NewDaily(ingestion, leagues, cfg.Scheduler.Interval)
		go daily.Run(ctx)
	}

	handler := api.NewHandler(ingestion, leagues, st)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", cfg.Server.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
			srv.Close()
		}
	}

	log.Println("Officials Stats Service stopped")
}

// buildStore wires the configured persistence backend. The returned Redis
// client is nil unless the redis backend is selected.
func buildStore(ctx context.Context, cfg *config.Config, leagues *registry.Registry) (store.Store, *redis.Client, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, nil, err
		}

		prefixes := make(map[string]string)
		for _, key := range leagues.AllLeagueKeys() {
			module, err := leagues.GetModule(key)
			if err != nil {
				continue
			}
			prefixes[key] = module.Config().StoragePrefix
		}
		return store.NewRedisStore(client, prefixes), client, func() { client.Close() }, nil

	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return pg, nil, func() { pg.Close() }, nil

	case "memory":
		return store.NewMemoryStore(), nil, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
