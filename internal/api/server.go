// Package api serves the record store, attachment, report and auth endpoints
// consumed by the dashboard.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/attachment"
	"github.com/dharsanguruparan/coedash/internal/auth"
	"github.com/dharsanguruparan/coedash/internal/config"
	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/signing"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

// RecordRepository persists records per collection. Update writes fields
// only; the file link is owned by the attachment manager.
type RecordRepository interface {
	List(ctx context.Context, kind model.Kind, ownerID string) ([]*model.Record, error)
	Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error)
	Create(ctx context.Context, kind model.Kind, rec *model.Record) error
	Update(ctx context.Context, kind model.Kind, rec *model.Record) (*model.Record, error)
	Delete(ctx context.Context, kind model.Kind, id string) error
}

// ReportRepository persists saved reports.
type ReportRepository interface {
	Create(ctx context.Context, rep *model.Report) error
	List(ctx context.Context, createdBy string) ([]*model.Report, error)
	Get(ctx context.Context, id string) (*model.Report, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*model.User, string, error)
	Get(ctx context.Context, id string) (*model.User, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Records     RecordRepository
	Reports     ReportRepository
	Users       UserRepository
	Attachments *attachment.Manager
	Signer      *signing.Signer
	Files       FileSource
	Issuer      *auth.Issuer
	Verifier    auth.Verifier
	Validator   *validation.Validator
	Logger      *zap.Logger
}

// Server exposes the HTTP API.
type Server struct {
	cfg    *config.Config
	deps   Deps
	logger *zap.Logger
	server *http.Server
}

// New constructs a Server.
func New(cfg *config.Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	return &Server{cfg: cfg, deps: deps, logger: deps.Logger.Named("api")}
}

// Handler builds the router. API routes live under /api; health and metrics
// sit at the root.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)
	r.Use(requestLogger(s.logger))
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/files/*", s.handleFile)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/auth/profile", s.handleProfile)

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", s.handleListReports)
				r.Post("/", s.handleCreateReport)
				r.Get("/{id}", s.handleGetReport)
				r.Delete("/{id}", s.handleDeleteReport)
				r.Get("/{id}/export", s.handleExportReport)
			})

			r.Route("/{collection}", func(r chi.Router) {
				r.Get("/", s.handleListRecords)
				r.Post("/", s.handleCreateRecord)
				r.Get("/{id}", s.handleGetRecord)
				r.Put("/{id}", s.handleUpdateRecord)
				r.Delete("/{id}", s.handleDeleteRecord)
				r.Post("/{id}/attachment", s.handleUploadAttachment)
				r.Delete("/{id}/attachment", s.handleDeleteAttachment)
			})
		})
	})
	return r
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	s.logger.Info("api listening", zap.String("addr", s.cfg.Address))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
