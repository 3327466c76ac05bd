package records

import (
	"context"
	"sync"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

// Scope restricts a list to every record or the viewer's own.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeMine
)

func (s Scope) String() string {
	if s == ScopeMine {
		return "mine"
	}
	return "all"
}

// ConfirmFunc asks the user to confirm deleting rec.
type ConfirmFunc func(rec *model.Record) bool

// ListController shows one collection, filtered client side, and mediates new,
// edit and delete. It always reloads from the store after a mutation.
type ListController struct {
	schema    *Schema
	store     Store
	viewer    model.Viewer
	validator *validation.Validator

	mu       sync.Mutex
	scope    Scope
	loaded   []*model.Record
	criteria Criteria
}

// NewListController returns a controller for schema on behalf of viewer.
func NewListController(schema *Schema, store Store, viewer model.Viewer, v *validation.Validator) *ListController {
	return &ListController{schema: schema, store: store, viewer: viewer, validator: v}
}

// Schema returns the kind's schema.
func (l *ListController) Schema() *Schema { return l.schema }

// Scope returns the current scope.
func (l *ListController) Scope() Scope {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scope
}

// Load fetches the whole collection. With ScopeMine only records owned by the
// viewer are kept, whatever the store returned.
func (l *ListController) Load(ctx context.Context, scope Scope) ([]*model.Record, error) {
	recs, err := l.store.List(ctx, l.schema.Kind, scope == ScopeMine)
	if err != nil {
		return nil, &ActionError{Action: "loading", Noun: l.schema.Singular + " records", Err: err}
	}
	if scope == ScopeMine {
		mine := make([]*model.Record, 0, len(recs))
		for _, r := range recs {
			if r.OwnerID == l.viewer.UserID {
				mine = append(mine, r)
			}
		}
		recs = mine
	}
	l.mu.Lock()
	l.scope = scope
	l.loaded = recs
	l.mu.Unlock()
	return append([]*model.Record(nil), recs...), nil
}

// Reload repeats Load with the current scope.
func (l *ListController) Reload(ctx context.Context) error {
	_, err := l.Load(ctx, l.Scope())
	return err
}

// ToggleScope switches between all and mine and reloads. Only directors may
// toggle.
func (l *ListController) ToggleScope(ctx context.Context) (Scope, error) {
	if !l.viewer.CanToggleScope() {
		return l.Scope(), ErrScopeNotAllowed
	}
	next := ScopeMine
	if l.Scope() == ScopeMine {
		next = ScopeAll
	}
	if _, err := l.Load(ctx, next); err != nil {
		return l.Scope(), err
	}
	return next, nil
}

// Records returns the loaded collection, unfiltered.
func (l *ListController) Records() []*model.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*model.Record(nil), l.loaded...)
}

// ApplyFilter remembers c and returns the loaded records matching it.
func (l *ListController) ApplyFilter(c Criteria) ([]*model.Record, error) {
	if err := c.Validate(l.schema, l.validator); err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.criteria = c
	loaded := l.loaded
	l.mu.Unlock()
	return Apply(l.schema, loaded, c), nil
}

// Visible returns the loaded records matching the current criteria.
func (l *ListController) Visible() []*model.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Apply(l.schema, l.loaded, l.criteria)
}

// Criteria returns the current filter.
func (l *ListController) Criteria() Criteria {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.criteria
}

// RequestNew opens a create form that reloads the list once saved.
func (l *ListController) RequestNew() *Form {
	f := l.newForm()
	f.OpenCreate()
	return f
}

// RequestEdit opens an edit form for rec that reloads the list once saved.
func (l *ListController) RequestEdit(rec *model.Record) *Form {
	f := l.newForm()
	f.OpenEdit(rec)
	return f
}

func (l *ListController) newForm() *Form {
	f := NewForm(l.schema, l.store, l.validator)
	f.OnSaved(func(ctx context.Context, _ *model.Record) error {
		return l.Reload(ctx)
	})
	return f
}

// RequestDelete deletes rec after confirm returns true, then reloads. It
// reports whether the delete happened. On failure the loaded list is left as
// it was.
func (l *ListController) RequestDelete(ctx context.Context, rec *model.Record, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(rec) {
		return false, nil
	}
	if err := l.store.Delete(ctx, l.schema.Kind, rec.ID); err != nil {
		return false, &ActionError{Action: "deleting", Noun: l.schema.Singular, Err: err}
	}
	return true, l.Reload(ctx)
}
