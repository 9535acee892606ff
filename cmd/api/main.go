//	@title			Stashdrive API
//	@version		1.0
//	@description	Folder and file operations over an S3-compatible object storage bucket.
//
//	@host		localhost:5001
//	@BasePath	/api

//go:generate swag init -g main.go -d ./,../../internal/files,../../internal/response -o ../../docs/swagger --outputTypes go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stashdrive/service/internal/config"
	"github.com/stashdrive/service/internal/db"
	"github.com/stashdrive/service/internal/files"
	"github.com/stashdrive/service/internal/logger"
	"github.com/stashdrive/service/internal/metrics"
	"github.com/stashdrive/service/internal/server"
	"github.com/stashdrive/service/internal/storage"
	"github.com/stashdrive/service/internal/tracing"

	_ "github.com/stashdrive/service/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})
	if !cfg.EnvFileLoaded {
		log.Debug().Msg("no .env file found, using environment")
	}

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.TracingEndpoint,
		SampleRatio: cfg.TracingSampleRatio,
		ServiceName: "stashdrive",
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing init failed")
	}

	store, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("object storage init failed")
	}
	defer closeStore()

	m := metrics.New()
	store = storage.Instrument(storage.WithRetry(store, cfg.StorageMaxRetries), m)

	// Wire dependencies: storage → service → handler
	filesSvc := files.NewService(store)
	filesHandler := files.NewHandler(filesSvc)

	router := server.NewRouter(server.Options{
		Log:            log,
		Files:          filesHandler,
		Metrics:        m,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// Uploads stream request bodies to storage, so no write timeout.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.AppEnv).
			Str("driver", cfg.StorageDriver).
			Msg("server listening")
		log.Info().Msgf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracing shutdown")
	}

	log.Info().Msg("server stopped")
}

// openStorage builds the backend selected by STORAGE_DRIVER. The returned
// func releases whatever the backend holds open.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Storage, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
			return nil, nil, fmt.Errorf("database migration: %w", err)
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection: %w", err)
		}
		return storage.NewPostgresStorage(pool, cfg.StoragePublicBase), pool.Close, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage; objects are lost on restart")
		return storage.NewMemoryStorage(cfg.StoragePublicBase), func() {}, nil

	default:
		s, err := storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			Region:     cfg.StorageRegion,
			UseSSL:     cfg.StorageUseSSL,
			PublicBase: cfg.StoragePublicBase,
			PublicRead: cfg.StoragePublicRead,
			PartSize:   cfg.StoragePartSize,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}
