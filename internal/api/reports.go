package api

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/records"
	"github.com/dharsanguruparan/coedash/internal/report"
	"github.com/dharsanguruparan/coedash/internal/repository"
)

// handleCreateReport always inserts a new report. The title is stored as
// given.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var body model.Report
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := records.SchemaForSourceType(body.SourceType); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep := &model.Report{
		ID:             uuid.NewString(),
		Title:          body.Title,
		SourceType:     body.SourceType,
		FilterCriteria: body.FilterCriteria,
		ReportData:     body.ReportData,
		CreatedBy:      viewerFrom(r).Subject,
	}
	if rep.FilterCriteria == nil {
		rep.FilterCriteria = map[string]string{}
	}
	if err := s.deps.Reports.Create(r.Context(), rep); err != nil {
		s.logger.Error("create report", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to save report")
		return
	}
	respondJSON(w, http.StatusCreated, rep)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	createdBy := ""
	if onlyMine(r) {
		createdBy = viewerFrom(r).Subject
	}
	reports, err := s.deps.Reports.List(r.Context(), createdBy)
	if err != nil {
		s.logger.Error("list reports", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load reports")
		return
	}
	if reports == nil {
		reports = []*model.Report{}
	}
	respondJSON(w, http.StatusOK, reports)
}

func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (*model.Report, bool) {
	rep, err := s.deps.Reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "report not found")
			return nil, false
		}
		s.logger.Error("load report", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return nil, false
	}
	return rep, true
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if rep, ok := s.loadReport(w, r); ok {
		respondJSON(w, http.StatusOK, rep)
	}
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	claims := viewerFrom(r)
	if rep.CreatedBy != claims.Subject && claims.Role != model.RoleDirector {
		respondError(w, http.StatusForbidden, "only the creator or a director can delete this report")
		return
	}
	if err := s.deps.Reports.Delete(r.Context(), rep.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("delete report", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete report")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, rep, format); err != nil {
		s.logger.Error("render report", zap.String("format", string(format)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": report.FileName(rep, format),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
