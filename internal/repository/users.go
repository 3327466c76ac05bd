package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// UserRepository stores accounts and their bcrypt hashes.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, role, first_name, last_name, date_of_birth, contact_number, address, created_at`

// Create inserts u with its password hash. Emails are stored lower case.
func (r *UserRepository) Create(ctx context.Context, u *model.User, passwordHash string) error {
	address, err := json.Marshal(u.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now().UTC()
	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, first_name, last_name, date_of_birth, contact_number, address, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, u.ID, u.Email, passwordHash, string(u.Role), u.FirstName, u.LastName, u.DateOfBirth, u.ContactNumber, address, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail returns the user and password hash for email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, string, error) {
	var hash string
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`, password_hash FROM users WHERE email=$1
	`, strings.ToLower(email)), &hash)
	if err != nil {
		return nil, "", err
	}
	return u, hash, nil
}

// Get returns a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func scanUser(row pgx.Row, extra ...any) (*model.User, error) {
	var (
		u       model.User
		role    string
		address []byte
	)
	dest := append([]any{&u.ID, &u.Email, &role, &u.FirstName, &u.LastName, &u.DateOfBirth, &u.ContactNumber, &address, &u.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = model.Role(role)
	if err := json.Unmarshal(address, &u.Address); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	return &u, nil
}
