// Package attachment keeps a record's fileLink in lockstep with at most one
// PDF object in storage.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dharsanguruparan/coedash/internal/model"
	pdfutil "github.com/dharsanguruparan/coedash/internal/pdf"
)

// PDFContentType is the only accepted attachment type.
const PDFContentType = "application/pdf"

// KeyPrefix is the namespace of every attachment object.
const KeyPrefix = "pdfs/"

var (
	ErrNotPDF   = errors.New("only PDF files can be attached")
	ErrTooLarge = errors.New("file too large")
	ErrEmpty    = errors.New("empty file")
)

// ObjectStore is the subset of object storage the manager needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
}

// Linker turns object keys into durable download links and back.
type Linker interface {
	Link(key string) string
	Key(link string) (string, error)
}

// LinkIndex finds the records whose fileLink equals link. Keys are shared
// when one uploader attaches the same file name to several records.
type LinkIndex interface {
	LinkedBy(ctx context.Context, link string) ([]string, error)
}

// RecordLinker changes a record's fileLink without touching its fields.
type RecordLinker interface {
	LinkIndex
	SetFileLink(ctx context.Context, kind model.Kind, id string, link *string) (*model.Record, error)
}

// File is an upload candidate. Content must allow random access so the PDF
// can be parsed before it is stored.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.ReaderAt
}

// Manager orchestrates upload, replace and delete of record attachments.
type Manager struct {
	store   ObjectStore
	links   Linker
	records RecordLinker
	purger  Purger
	maxSize int64
	logger  *zap.Logger
}

// NewManager wires a Manager. maxSize <= 0 disables the size limit.
func NewManager(store ObjectStore, links Linker, records RecordLinker, purger Purger, maxSize int64, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:   store,
		links:   links,
		records: records,
		purger:  purger,
		maxSize: maxSize,
		logger:  logger.Named("attachment"),
	}
}

// ObjectKey returns pdfs/{userID}/{base name}.
func ObjectKey(userID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "attachment.pdf"
	}
	return KeyPrefix + userID + "/" + name
}

// Check validates f without storing it: declared type, size, sniffed type and
// a successful parse.
func (m *Manager) Check(f File) error {
	if f.Size <= 0 {
		return ErrEmpty
	}
	if m.maxSize > 0 && f.Size > m.maxSize {
		return fmt.Errorf("%w: limit is %s", ErrTooLarge, humanize.IBytes(uint64(m.maxSize)))
	}
	declared, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil || declared != PDFContentType {
		return ErrNotPDF
	}
	head := make([]byte, 512)
	n, err := f.Content.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read file: %w", err)
	}
	if http.DetectContentType(head[:n]) != PDFContentType {
		return ErrNotPDF
	}
	if _, err := pdfutil.PageCount(f.Content, f.Size); err != nil {
		return fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return nil
}

// Upload stores f under the uploader's namespace and points rec at it,
// replacing any previous attachment. When the record update fails the new
// object is removed again, unless rec or another record already references
// the same key. A superseded object is purged once the record has been
// updated.
func (m *Manager) Upload(ctx context.Context, uploaderID string, kind model.Kind, rec *model.Record, f File) (*model.Record, error) {
	if err := m.Check(f); err != nil {
		return nil, err
	}
	key := ObjectKey(uploaderID, f.Name)
	previous := m.currentKey(rec)

	if err := m.store.Put(ctx, key, io.NewSectionReader(f.Content, 0, f.Size), f.Size, PDFContentType); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	link := m.links.Link(key)
	saved, err := m.records.SetFileLink(ctx, kind, rec.ID, &link)
	if err != nil {
		if key != previous {
			m.discard(ctx, key)
		}
		return nil, fmt.Errorf("update record file link: %w", err)
	}
	if previous != "" && previous != key {
		m.purge(ctx, previous)
	}
	m.logger.Info("attachment stored",
		zap.String("kind", string(kind)),
		zap.String("record", rec.ID),
		zap.String("key", key),
		zap.Int64("size", f.Size))
	return saved, nil
}

// Delete removes the attachment object, if it still exists and no other
// record links it, then clears fileLink. A storage or lookup failure returns
// before the record is touched.
func (m *Manager) Delete(ctx context.Context, kind model.Kind, rec *model.Record) (*model.Record, error) {
	if rec.FileLink == nil {
		return rec, nil
	}
	if key := m.currentKey(rec); key != "" {
		shared, err := m.linkedElsewhere(ctx, *rec.FileLink, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("check attachment references: %w", err)
		}
		exists, err := m.store.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check attachment: %w", err)
		}
		if exists && !shared {
			if err := m.store.Remove(ctx, key); err != nil {
				return nil, fmt.Errorf("remove attachment: %w", err)
			}
		}
	}
	saved, err := m.records.SetFileLink(ctx, kind, rec.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("clear record file link: %w", err)
	}
	return saved, nil
}

// Forget schedules removal of rec's attachment after the record itself was
// deleted. The purger keeps objects other records still link.
func (m *Manager) Forget(ctx context.Context, rec *model.Record) {
	if key := m.currentKey(rec); key != "" {
		m.purge(ctx, key)
	}
}

// HasAttachment reports whether rec links to an object that exists. Broken
// links count as no attachment.
func (m *Manager) HasAttachment(ctx context.Context, rec *model.Record) bool {
	key := m.currentKey(rec)
	if key == "" {
		return false
	}
	ok, err := m.store.Exists(ctx, key)
	return err == nil && ok
}

// Resolve clears the fileLink of every record whose link is broken: unsigned,
// or pointing at an object that no longer exists. Records are changed in
// place; callers pass copies they are about to return.
func (m *Manager) Resolve(ctx context.Context, recs ...*model.Record) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, rec := range recs {
		if rec == nil || rec.FileLink == nil {
			continue
		}
		rec := rec
		g.Go(func() error {
			if !m.HasAttachment(gctx, rec) {
				rec.FileLink = nil
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Manager) linkedElsewhere(ctx context.Context, link, exceptID string) (bool, error) {
	ids, err := m.records.LinkedBy(ctx, link)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// discard removes an object the failed upload left behind, unless some record
// links it.
func (m *Manager) discard(ctx context.Context, key string) {
	shared, err := m.linkedElsewhere(ctx, m.links.Link(key), "")
	if err != nil || shared {
		m.logger.Warn("keeping attachment after failed update",
			zap.String("key", key), zap.Bool("shared", shared), zap.Error(err))
		return
	}
	if err := m.store.Remove(ctx, key); err != nil {
		m.logger.Warn("leaving orphaned attachment for sweep",
			zap.String("key", key), zap.Error(err))
	}
}

func (m *Manager) currentKey(rec *model.Record) string {
	if rec == nil || rec.FileLink == nil {
		return ""
	}
	key, err := m.links.Key(*rec.FileLink)
	if err != nil {
		return ""
	}
	return key
}

func (m *Manager) purge(ctx context.Context, key string) {
	if m.purger == nil {
		return
	}
	if err := m.purger.Purge(ctx, key); err != nil {
		m.logger.Warn("purge attachment failed, leaving it for the sweep",
			zap.String("key", key), zap.Error(err))
	}
}
