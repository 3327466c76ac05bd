// Package recordstore is the dashboard's HTTP client for the coedash API. It
// implements records.Store and report.Store.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/report"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

// Unwrap exposes field errors reported by the server as a validation error.
func (e *StatusError) Unwrap() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return &validation.Error{Fields: e.Fields}
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// Client talks to the API rooted at baseURL, e.g. http://localhost:8080/api.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
}

// New builds a Client. timeout <= 0 disables the client timeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.Named("recordstore"),
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	out := *c
	out.token = token
	return &out
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account and returns its session.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the signed-in user.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List implements records.Store.
func (c *Client) List(ctx context.Context, kind model.Kind, onlyMine bool) ([]*model.Record, error) {
	var out []*model.Record
	path := "/" + string(kind) + "?onlyMine=" + strconv.FormatBool(onlyMine)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	var out model.Record
	if err := c.doJSON(ctx, http.MethodGet, recordPath(kind, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create implements records.Store.
func (c *Client) Create(ctx context.Context, kind model.Kind, fields map[string]any) (*model.Record, error) {
	var out model.Record
	if err := c.doJSON(ctx, http.MethodPost, "/"+string(kind), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update implements records.Store.
func (c *Client) Update(ctx context.Context, kind model.Kind, rec *model.Record) (*model.Record, error) {
	var out model.Record
	if err := c.doJSON(ctx, http.MethodPut, recordPath(kind, rec.ID), rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete implements records.Store.
func (c *Client) Delete(ctx context.Context, kind model.Kind, id string) error {
	return c.doJSON(ctx, http.MethodDelete, recordPath(kind, id), nil, nil)
}

// UploadAttachment attaches a PDF to a record, replacing any previous one.
func (c *Client) UploadAttachment(ctx context.Context, kind model.Kind, id, fileName string, content io.Reader) (*model.Record, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": filepath.Base(fileName),
	}))
	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, recordPath(kind, id)+"/attachment", &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out model.Record
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// DeleteAttachment removes a record's attachment.
func (c *Client) DeleteAttachment(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	var out model.Record
	if err := c.doJSON(ctx, http.MethodDelete, recordPath(kind, id)+"/attachment", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReport implements report.Store.
func (c *Client) CreateReport(ctx context.Context, r *model.Report) (*model.Report, error) {
	var out model.Report
	if err := c.doJSON(ctx, http.MethodPost, "/reports", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReports implements report.Store.
func (c *Client) ListReports(ctx context.Context, onlyMine bool) ([]*model.Report, error) {
	var out []*model.Report
	if err := c.doJSON(ctx, http.MethodGet, "/reports?onlyMine="+strconv.FormatBool(onlyMine), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReport fetches one report.
func (c *Client) GetReport(ctx context.Context, id string) (*model.Report, error) {
	var out model.Report
	if err := c.doJSON(ctx, http.MethodGet, "/reports/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReport implements report.Store.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/reports/"+url.PathEscape(id), nil, nil)
}

// ExportReport streams the server-rendered export. The caller closes the
// reader. The returned name comes from Content-Disposition.
func (c *Client) ExportReport(ctx context.Context, id string, format report.Format) (io.ReadCloser, string, error) {
	path := "/reports/" + url.PathEscape(id) + "/export?format=" + url.QueryEscape(string(format))
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, "", err
	}
	name := "report." + string(format)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = filepath.Base(params["filename"])
	}
	return resp.Body, name, nil
}

func recordPath(kind model.Kind, id string) string {
	return "/" + string(kind) + "/" + url.PathEscape(id)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do sends the request and turns non-2xx answers into *StatusError. On
// success the caller owns the response body.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	se := &StatusError{Status: resp.StatusCode}
	var payload struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(data, &payload) == nil {
		se.Message = payload.Error
		se.Fields = payload.Fields
	}
	return nil, se
}
