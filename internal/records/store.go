package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// Store is the record CRUD surface the controllers depend on. The HTTP client
// in internal/recordstore implements it.
type Store interface {
	List(ctx context.Context, kind model.Kind, onlyMine bool) ([]*model.Record, error)
	Create(ctx context.Context, kind model.Kind, fields map[string]any) (*model.Record, error)
	Update(ctx context.Context, kind model.Kind, rec *model.Record) (*model.Record, error)
	Delete(ctx context.Context, kind model.Kind, id string) error
}

var (
	// ErrBusy is returned when a submit is attempted while one is in flight.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrNotOpen is returned when a closed form is edited or submitted.
	ErrNotOpen = errors.New("form is not open")
	// ErrScopeNotAllowed is returned when a non-director toggles scope.
	ErrScopeNotAllowed = errors.New("only directors can switch between all and own records")
)

// ActionError is a service failure surfaced to the user, naming the action
// that failed. It is never retried automatically.
type ActionError struct {
	Action string
	Noun   string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("Error %s %s. Please try again.", e.Action, e.Noun)
}

func (e *ActionError) Unwrap() error { return e.Err }
