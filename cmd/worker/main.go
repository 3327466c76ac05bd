// Command worker runs attachment housekeeping: queued purges and the
// scheduled reconciliation sweep.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/attachment"
	"github.com/dharsanguruparan/coedash/internal/config"
	"github.com/dharsanguruparan/coedash/internal/database"
	"github.com/dharsanguruparan/coedash/internal/logging"
	"github.com/dharsanguruparan/coedash/internal/queue"
	"github.com/dharsanguruparan/coedash/internal/repository"
	"github.com/dharsanguruparan/coedash/internal/s3storage"
	"github.com/dharsanguruparan/coedash/internal/signing"
	"github.com/dharsanguruparan/coedash/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.Must("production", "info").Fatal("load config", zap.Error(err))
	}
	logger := logging.Must(cfg.LogEnv, cfg.LogLevel)
	defer logger.Sync()

	if cfg.StorageBackend != config.BackendS3 {
		logger.Fatal("the worker needs shared object storage; set COEDASH_STORAGE=s3")
	}
	if cfg.RedisAddr == "" {
		logger.Fatal("the worker needs COEDASH_REDIS_ADDR")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	store, err := s3storage.New(cfg.S3)
	if err != nil {
		logger.Fatal("init storage", zap.Error(err))
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Fatal("ensure bucket", zap.Error(err))
	}
	links, err := signing.NewLinks(cfg.PublicURL, signing.NewSigner(cfg.SigningSecret))
	if err != nil {
		logger.Fatal("parse public url", zap.Error(err))
	}
	recordRepo := repository.NewRecordRepository(pool)
	reconciler := attachment.NewReconciler(store, recordRepo, links, cfg.ReconcileGrace, logger)
	processor := worker.NewProcessor(attachment.NewStorePurger(store, links, recordRepo), reconciler, logger)

	redis := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	server := asynq.NewServer(redis, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger.Named("asynq").Sugar(),
	})
	scheduler := asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		Logger: logger.Named("scheduler").Sugar(),
	})
	cronspec := "@every " + cfg.ReconcileInterval.String()
	if _, err := scheduler.Register(cronspec, queue.NewReconcileTask(cfg.ReconcileInterval)); err != nil {
		logger.Fatal("register reconcile task", zap.Error(err))
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal("start scheduler", zap.Error(err))
	}
	defer scheduler.Shutdown()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	logger.Info("worker started",
		zap.Int("concurrency", cfg.WorkerConcurrency),
		zap.Duration("reconcile_interval", cfg.ReconcileInterval))
	if err := server.Run(processor.Handler()); err != nil {
		logger.Error("worker stopped", zap.Error(err))
		os.Exit(1)
	}
}
