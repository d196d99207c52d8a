package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dunamismax/avatarforge/internal/cache"
	"github.com/dunamismax/avatarforge/internal/config"
	"github.com/dunamismax/avatarforge/internal/pipeline"
	"github.com/dunamismax/avatarforge/internal/storage"
	"github.com/dunamismax/avatarforge/internal/store"
	"github.com/dunamismax/avatarforge/internal/telemetry"
	"github.com/dunamismax/avatarforge/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[worker] ", log.LstdFlags|log.Lmsgprefix)
	ctx := context.Background()

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TraceConfig{
		ServiceName:  "avatarforge-worker",
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
	}, logger)
	if err != nil {
		logger.Fatalf("tracing setup failed: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Printf("tracing shutdown error: %v", err)
		}
	}()

	storageClient, err := storage.NewClient(storage.Config{
		Endpoint: cfg.Storage.Endpoint,
		Access:   cfg.Storage.AccessKey,
		Secret:   cfg.Storage.SecretKey,
		Bucket:   cfg.Storage.Bucket,
		UseSSL:   cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatalf("storage client failed: %v", err)
	}
	if err := storageClient.EnsureBucket(ctx); err != nil {
		logger.Fatalf("ensure bucket failed: %v", err)
	}

	var outcomes store.OutcomeStore
	if cfg.Worker.RecordOutcomes {
		pg, err := store.NewPostgresOutcomeStore(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatalf("outcome store failed: %v", err)
		}
		defer pg.Close()
		outcomes = pg
	}

	var digests pipeline.DigestCache
	if cfg.Worker.DigestCache {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Queue.RedisAddr,
			Password: cfg.Queue.RedisPassword,
			DB:       cfg.Queue.RedisDB,
		})
		defer rdb.Close()
		rc, err := cache.NewRedisDigestCache(rdb, cfg.Cache.KeyPrefix, cfg.Cache.TTL)
		if err != nil {
			logger.Fatalf("digest cache failed: %v", err)
		}
		digests = rc
	}

	logger.Printf(
		"starting worker concurrency=%d max_active_jobs=%d queue=%s redis=%s bucket=%s record=%t cache=%t",
		cfg.Worker.Concurrency,
		cfg.Worker.MaxActiveJobs,
		cfg.Queue.Name,
		cfg.Queue.RedisAddr,
		cfg.Storage.Bucket,
		cfg.Worker.RecordOutcomes,
		cfg.Worker.DigestCache,
	)

	srv := worker.NewServer(logger, cfg.Queue, cfg.Worker, storageClient, outcomes, digests)

	httpServer := &http.Server{
		Addr:         cfg.Worker.MetricsAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Printf("metrics listening on %s", cfg.Worker.MetricsAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server failed: %v", err)
		}
	}()

	// Run returns after asynq has handled SIGINT/SIGTERM and drained.
	runErr := srv.Run()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("metrics shutdown failed: %v", err)
	}
	if runErr != nil {
		logger.Fatalf("worker failed: %v", runErr)
	}
}
