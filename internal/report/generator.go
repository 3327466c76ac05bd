// Package report saves point-in-time snapshots of filtered record lists and
// renders them to PDF or CSV.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// ErrEmptyTitle is returned when a report is saved without a title.
var ErrEmptyTitle = errors.New("report title is required")

// Store persists reports. Reports have no update operation.
type Store interface {
	CreateReport(ctx context.Context, r *model.Report) (*model.Report, error)
	ListReports(ctx context.Context, onlyMine bool) ([]*model.Report, error)
	DeleteReport(ctx context.Context, id string) error
}

// Generator saves and lists reports.
type Generator struct {
	store Store
}

// NewGenerator returns a Generator over store.
func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// Save persists a new report. Rows are deep-copied so later changes to the
// caller's rows or the underlying records do not reach the snapshot.
func (g *Generator) Save(ctx context.Context, title, sourceType string, criteria map[string]string, rows []*model.Row) (*model.Report, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if sourceType == "" {
		return nil, errors.New("report source type is required")
	}
	snapshot := make([]*model.Row, 0, len(rows))
	for _, row := range rows {
		snapshot = append(snapshot, row.Clone())
	}
	filters := make(map[string]string, len(criteria))
	for k, v := range criteria {
		filters[k] = v
	}
	saved, err := g.store.CreateReport(ctx, &model.Report{
		Title:          title,
		SourceType:     sourceType,
		FilterCriteria: filters,
		ReportData:     snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return saved, nil
}

// List returns saved reports, optionally only the caller's.
func (g *Generator) List(ctx context.Context, onlyMine bool) ([]*model.Report, error) {
	reports, err := g.store.ListReports(ctx, onlyMine)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Delete removes a report.
func (g *Generator) Delete(ctx context.Context, id string) error {
	if err := g.store.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}
