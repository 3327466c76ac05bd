package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/records"
	"github.com/dharsanguruparan/coedash/internal/repository"
)

// collection resolves the {collection} URL parameter, answering 404 for
// unknown kinds.
func (s *Server) collection(w http.ResponseWriter, r *http.Request) (model.Kind, *records.Schema, bool) {
	kind, err := model.ParseKind(chi.URLParam(r, "collection"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return "", nil, false
	}
	schema, err := records.SchemaFor(kind)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return "", nil, false
	}
	return kind, schema, true
}

// loadRecord fetches {id} of kind, answering 404 or 500 itself.
func (s *Server) loadRecord(w http.ResponseWriter, r *http.Request, kind model.Kind) (*model.Record, bool) {
	rec, err := s.deps.Records.Get(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "record not found")
			return nil, false
		}
		s.logger.Error("load record", zap.String("kind", string(kind)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load record")
		return nil, false
	}
	return rec, true
}

func onlyMine(r *http.Request) bool {
	mine, _ := strconv.ParseBool(r.URL.Query().Get("onlyMine"))
	return mine
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	kind, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	owner := ""
	if onlyMine(r) {
		owner = viewerFrom(r).Subject
	}
	recs, err := s.deps.Records.List(r.Context(), kind, owner)
	if err != nil {
		s.logger.Error("list records", zap.String("kind", string(kind)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	if recs == nil {
		recs = []*model.Record{}
	}
	s.resolveLinks(r, recs...)
	respondJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	kind, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, ok := s.loadRecord(w, r, kind)
	if !ok {
		return
	}
	s.resolveLinks(r, rec)
	respondJSON(w, http.StatusOK, rec)
}

// resolveLinks hides fileLinks whose object is gone.
func (s *Server) resolveLinks(r *http.Request, recs ...*model.Record) {
	if s.deps.Attachments != nil {
		s.deps.Attachments.Resolve(r.Context(), recs...)
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	kind, schema, ok := s.collection(w, r)
	if !ok {
		return
	}
	var body model.Record
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := records.CheckFields(s.deps.Validator, schema, body.Fields); err != nil {
		respondInvalid(w, err)
		return
	}
	rec := &model.Record{
		ID:      uuid.NewString(),
		OwnerID: viewerFrom(r).Subject,
		Fields:  body.Fields,
	}
	if err := s.deps.Records.Create(r.Context(), kind, rec); err != nil {
		s.logger.Error("create record", zap.String("kind", string(kind)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save record")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// handleUpdateRecord replaces every field. Identity, owner and fileLink stay
// as stored; attachments change only through the attachment endpoints, and
// the repository update leaves the link column alone.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	kind, schema, ok := s.collection(w, r)
	if !ok {
		return
	}
	var body model.Record
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := records.CheckFields(s.deps.Validator, schema, body.Fields); err != nil {
		respondInvalid(w, err)
		return
	}
	next := &model.Record{ID: chi.URLParam(r, "id"), Fields: body.Fields}
	saved, err := s.deps.Records.Update(r.Context(), kind, next)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "record not found")
			return
		}
		s.logger.Error("update record", zap.String("kind", string(kind)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update record")
		return
	}
	s.resolveLinks(r, saved)
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, ok := s.loadRecord(w, r, kind)
	if !ok {
		return
	}
	claims := viewerFrom(r)
	if rec.OwnerID != claims.Subject && claims.Role != model.RoleDirector {
		respondError(w, http.StatusForbidden, "only the owner or a director can delete this record")
		return
	}
	if err := s.deps.Records.Delete(r.Context(), kind, rec.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "record not found")
			return
		}
		s.logger.Error("delete record", zap.String("kind", string(kind)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}
	if s.deps.Attachments != nil {
		s.deps.Attachments.Forget(r.Context(), rec)
	}
	w.WriteHeader(http.StatusNoContent)
}
