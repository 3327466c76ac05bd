package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/storage"
)

// FileSource answers a download request for a verified object key.
type FileSource interface {
	ServeObject(w http.ResponseWriter, r *http.Request, key string)
}

// Presigner issues short-lived object URLs.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// PresignedFiles redirects downloads to presigned object storage URLs.
type PresignedFiles struct {
	store  Presigner
	ttl    time.Duration
	logger *zap.Logger
}

// NewPresignedFiles builds a FileSource over store.
func NewPresignedFiles(store Presigner, ttl time.Duration, logger *zap.Logger) *PresignedFiles {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresignedFiles{store: store, ttl: ttl, logger: logger}
}

// ServeObject implements FileSource.
func (p *PresignedFiles) ServeObject(w http.ResponseWriter, r *http.Request, key string) {
	exists, err := p.store.Exists(r.Context(), key)
	if err != nil {
		p.logger.Error("stat object", zap.String("key", key), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to locate file")
		return
	}
	if !exists {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}
	target, err := p.store.PresignGet(r.Context(), key, p.ttl)
	if err != nil {
		p.logger.Error("presign object", zap.String("key", key), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to generate url")
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Opener reads objects directly.
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, model.Object, error)
}

// StreamedFiles serves object bytes itself. It backs the memory storage
// backend, which has no URLs of its own.
type StreamedFiles struct {
	store Opener
}

// NewStreamedFiles builds a FileSource over store.
func NewStreamedFiles(store Opener) *StreamedFiles {
	return &StreamedFiles{store: store}
}

// ServeObject implements FileSource.
func (s *StreamedFiles) ServeObject(w http.ResponseWriter, r *http.Request, key string) {
	rc, obj, err := s.store.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "file not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to open file")
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Content-Disposition", "inline; filename=\""+path.Base(key)+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

// handleFile serves GET /files/{key}?sig=. The signature stands in for
// authentication so links work when opened outside the dashboard.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || key == "" {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}
	if !s.deps.Signer.Validate(key, r.URL.Query().Get("sig")) {
		respondError(w, http.StatusForbidden, "invalid file signature")
		return
	}
	if s.deps.Files == nil {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}
	s.deps.Files.ServeObject(w, r, key)
}
