package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/attachment"
	"github.com/dharsanguruparan/coedash/internal/repository"
)

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	kind, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+1024)
	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, "expecting multipart form")
		return
	}
	part, err := nextFilePart(mr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer part.Close()
	tmp, err := s.persistTemp(part)
	if err != nil {
		s.respondAttachmentError(w, err)
		return
	}
	defer os.Remove(tmp.path)
	defer tmp.f.Close()

	rec, ok := s.loadRecord(w, r, kind)
	if !ok {
		return
	}
	saved, err := s.deps.Attachments.Upload(r.Context(), viewerFrom(r).Subject, kind, rec, attachment.File{
		Name:        tmp.filename,
		ContentType: tmp.contentType,
		Size:        tmp.size,
		Content:     tmp.f,
	})
	if err != nil {
		s.respondAttachmentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	kind, _, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, ok := s.loadRecord(w, r, kind)
	if !ok {
		return
	}
	saved, err := s.deps.Attachments.Delete(r.Context(), kind, rec)
	if err != nil {
		s.respondAttachmentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) respondAttachmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attachment.ErrNotPDF):
		respondError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, attachment.ErrTooLarge):
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, attachment.ErrEmpty):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "record not found")
	default:
		s.logger.Error("attachment", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update attachment")
	}
}

// tempUpload is a multipart file spooled to disk so the PDF can be parsed
// with random access before it is stored.
type tempUpload struct {
	f           *os.File
	path        string
	size        int64
	contentType string
	filename    string
}

func (s *Server) persistTemp(part *multipart.Part) (*tempUpload, error) {
	tmpFile, err := os.CreateTemp("", "coedash-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	fail := func(err error) (*tempUpload, error) {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return nil, err
	}
	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, readErr := part.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > s.cfg.MaxFileSize {
				return fail(fmt.Errorf("%w: limit is %d bytes", attachment.ErrTooLarge, s.cfg.MaxFileSize))
			}
			if _, err := tmpFile.Write(buf[:n]); err != nil {
				return fail(fmt.Errorf("write temp file: %w", err))
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			var maxErr *http.MaxBytesError
			if errors.As(readErr, &maxErr) {
				return fail(fmt.Errorf("%w: limit is %d bytes", attachment.ErrTooLarge, s.cfg.MaxFileSize))
			}
			return fail(fmt.Errorf("read file: %w", readErr))
		}
	}
	if written == 0 {
		return fail(attachment.ErrEmpty)
	}
	filename := part.FileName()
	if filename == "" {
		filename = "attachment.pdf"
	}
	return &tempUpload{
		f:           tmpFile,
		path:        tmpFile.Name(),
		size:        written,
		contentType: part.Header.Get("Content-Type"),
		filename:    filename,
	}, nil
}

func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}
