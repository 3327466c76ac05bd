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

// RecordRepository stores records of every kind in one table keyed by
// collection and id. Typed fields live in a jsonb column.
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

const recordColumns = `id, owner_id, data, file_link, created_at, updated_at`

// List returns every record of kind in creation order. A non-empty ownerID
// restricts the result to that owner.
func (r *RecordRepository) List(ctx context.Context, kind model.Kind, ownerID string) ([]*model.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE collection=$1 AND ($2 = '' OR owner_id=$2)
		ORDER BY created_at, id
	`, string(kind), ownerID)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()
	var out []*model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Get returns one record.
func (r *RecordRepository) Get(ctx context.Context, kind model.Kind, id string) (*model.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM records WHERE collection=$1 AND id=$2
	`, string(kind), id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// Create inserts rec. ID and OwnerID must be set.
func (r *RecordRepository) Create(ctx context.Context, kind model.Kind, rec *model.Record) error {
	data, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	_, err = r.pool.Exec(ctx, `
		INSERT INTO records (collection, id, owner_id, data, file_link, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, string(kind), rec.ID, rec.OwnerID, data, rec.FileLink, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Update replaces the fields of rec. Owner, file link and creation time stay
// as stored and are returned on the result; the file link changes only through
// SetFileLink so a concurrent attachment upload is never undone.
func (r *RecordRepository) Update(ctx context.Context, kind model.Kind, rec *model.Record) (*model.Record, error) {
	data, err := json.Marshal(rec.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	out := rec.Clone()
	out.UpdatedAt = time.Now().UTC()
	err = r.pool.QueryRow(ctx, `
		UPDATE records
		SET data=$1, updated_at=$2
		WHERE collection=$3 AND id=$4
		RETURNING owner_id, file_link, created_at
	`, data, out.UpdatedAt, string(kind), rec.ID).Scan(&out.OwnerID, &out.FileLink, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update record: %w", err)
	}
	return out, nil
}

// SetFileLink points a record at link, or clears it when link is nil, and
// returns the stored record.
func (r *RecordRepository) SetFileLink(ctx context.Context, kind model.Kind, id string, link *string) (*model.Record, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE records
		SET file_link=$1, updated_at=$2
		WHERE collection=$3 AND id=$4
		RETURNING `+recordColumns,
		link, time.Now().UTC(), string(kind), id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set file link: %w", err)
	}
	return rec, nil
}

// Delete removes a record.
func (r *RecordRepository) Delete(ctx context.Context, kind model.Kind, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM records WHERE collection=$1 AND id=$2`, string(kind), id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FileLinks returns every non-null file link across all collections.
func (r *RecordRepository) FileLinks(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT file_link FROM records WHERE file_link IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("select file links: %w", err)
	}
	links, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect file links: %w", err)
	}
	return links, nil
}

// LinkedBy returns the ids of records in any collection whose file link is
// exactly link.
func (r *RecordRepository) LinkedBy(ctx context.Context, link string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM records WHERE file_link=$1`, link)
	if err != nil {
		return nil, fmt.Errorf("select linking records: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect linking records: %w", err)
	}
	return ids, nil
}

func scanRecord(row pgx.Row) (*model.Record, error) {
	var (
		rec  model.Record
		data []byte
	)
	if err := row.Scan(&rec.ID, &rec.OwnerID, &data, &rec.FileLink, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}
	fields, err := model.DecodeFields(data)
	if err != nil {
		return nil, err
	}
	rec.Fields = fields
	return &rec, nil
}
