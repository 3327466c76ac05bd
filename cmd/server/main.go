// Command server runs the coedash REST API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/api"
	"github.com/dharsanguruparan/coedash/internal/attachment"
	"github.com/dharsanguruparan/coedash/internal/auth"
	"github.com/dharsanguruparan/coedash/internal/config"
	"github.com/dharsanguruparan/coedash/internal/database"
	"github.com/dharsanguruparan/coedash/internal/logging"
	"github.com/dharsanguruparan/coedash/internal/queue"
	"github.com/dharsanguruparan/coedash/internal/repository"
	"github.com/dharsanguruparan/coedash/internal/s3storage"
	"github.com/dharsanguruparan/coedash/internal/signing"
	"github.com/dharsanguruparan/coedash/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Must("production", "info").Fatal("load config", zap.Error(err))
	}
	logger := logging.Must(cfg.LogEnv, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()
	recordRepo := repository.NewRecordRepository(pool)

	var (
		store attachment.ObjectStore
		files api.FileSource
	)
	switch cfg.StorageBackend {
	case config.BackendMemory:
		mem := storage.NewMemoryStore()
		store, files = mem, api.NewStreamedFiles(mem)
		logger.Warn("using in-memory object storage; attachments are lost on restart")
	default:
		s3, err := s3storage.New(cfg.S3)
		if err != nil {
			logger.Fatal("init storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			logger.Fatal("ensure bucket", zap.Error(err))
		}
		store, files = s3, api.NewPresignedFiles(s3, cfg.PresignTTL, logger)
	}

	signer := signing.NewSigner(cfg.SigningSecret)
	links, err := signing.NewLinks(cfg.PublicURL, signer)
	if err != nil {
		logger.Fatal("parse public url", zap.Error(err))
	}

	var purger attachment.Purger = attachment.NewStorePurger(store, links, recordRepo)
	if cfg.RedisAddr != "" && cfg.StorageBackend != config.BackendMemory {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		purger = queue.NewEnqueuer(client)
	}
	manager := attachment.NewManager(store, links, recordRepo, purger, cfg.MaxFileSize, logger)

	verifiers := auth.Chain{auth.NewHMACVerifier(cfg.TokenSecret)}
	if cfg.JWKSURL != "" {
		jwks, err := auth.NewJWKSVerifier(cfg.JWKSURL, cfg.JWKSIssuer, logger)
		if err != nil {
			logger.Fatal("init jwks verifier", zap.Error(err))
		}
		verifiers = append(verifiers, jwks)
	}

	srv := api.New(cfg, api.Deps{
		Records:     recordRepo,
		Reports:     repository.NewReportRepository(pool),
		Users:       repository.NewUserRepository(pool),
		Attachments: manager,
		Signer:      signer,
		Files:       files,
		Issuer:      auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL),
		Verifier:    verifiers,
		Logger:      logger,
	})
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
