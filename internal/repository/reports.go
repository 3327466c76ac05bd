package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// ReportRepository stores report snapshots.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository constructs a repository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

const reportColumns = `id, title, source_type, filter_criteria, report_data, created_by, created_at, updated_at`

// Create inserts rep. ID and CreatedBy must be set.
func (r *ReportRepository) Create(ctx context.Context, rep *model.Report) error {
	criteria, err := json.Marshal(rep.FilterCriteria)
	if err != nil {
		return fmt.Errorf("marshal filter criteria: %w", err)
	}
	if rep.ReportData == nil {
		rep.ReportData = []*model.Row{}
	}
	data, err := json.Marshal(rep.ReportData)
	if err != nil {
		return fmt.Errorf("marshal report data: %w", err)
	}
	now := time.Now().UTC()
	rep.CreatedAt = now
	rep.UpdatedAt = now
	_, err = r.pool.Exec(ctx, `
		INSERT INTO reports (`+reportColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rep.ID, rep.Title, rep.SourceType, criteria, string(data), rep.CreatedBy, rep.CreatedAt, rep.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// List returns reports newest first. A non-empty createdBy restricts the
// result to that creator.
func (r *ReportRepository) List(ctx context.Context, createdBy string) ([]*model.Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE ($1 = '' OR created_by=$1)
		ORDER BY created_at DESC, id
	`, createdBy)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()
	var out []*model.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

// Get returns one report.
func (r *ReportRepository) Get(ctx context.Context, id string) (*model.Report, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rep, err
}

// Delete removes a report.
func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReport(row pgx.Row) (*model.Report, error) {
	var (
		rep      model.Report
		criteria []byte
		data     string
	)
	if err := row.Scan(&rep.ID, &rep.Title, &rep.SourceType, &criteria, &data, &rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}
	if err := json.Unmarshal(criteria, &rep.FilterCriteria); err != nil {
		return nil, fmt.Errorf("decode filter criteria: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &rep.ReportData); err != nil {
		return nil, fmt.Errorf("decode report data: %w", err)
	}
	return &rep, nil
}
