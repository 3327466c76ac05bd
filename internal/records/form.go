package records

import (
	"context"
	"fmt"
	"sync"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

// Mode is whether a form creates or edits.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// State is the form lifecycle: Closed, Open, Submitting.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

// SavedFunc runs after a successful write.
type SavedFunc func(ctx context.Context, rec *model.Record) error

// Form holds one create-or-edit form. Field values are kept as the text the
// user typed and only converted on submit.
type Form struct {
	schema    *Schema
	store     Store
	validator *validation.Validator
	onSaved   SavedFunc

	mu     sync.Mutex
	state  State
	mode   Mode
	target *model.Record
	values map[string]string
	errors map[string]string
}

// NewForm returns a closed form for schema.
func NewForm(schema *Schema, store Store, v *validation.Validator) *Form {
	return &Form{schema: schema, store: store, validator: v}
}

// OnSaved sets the hook run after each successful submit.
func (f *Form) OnSaved(fn SavedFunc) { f.onSaved = fn }

// OpenCreate opens an empty form.
func (f *Form) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateOpen
	f.mode = ModeCreate
	f.target = nil
	f.values = make(map[string]string, len(f.schema.Fields))
	f.errors = nil
}

// OpenEdit opens the form populated from rec. List fields are shown joined by
// ", ".
func (f *Form) OpenEdit(rec *model.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateOpen
	f.mode = ModeEdit
	f.target = rec.Clone()
	f.values = make(map[string]string, len(f.schema.Fields))
	for _, field := range f.schema.Fields {
		f.values[field.Name] = InputText(field, rec.Field(field.Name))
	}
	f.errors = nil
}

// Set changes the text of one field.
func (f *Form) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateOpen {
		return ErrNotOpen
	}
	if _, ok := f.schema.Field(name); !ok {
		return fmt.Errorf("%s has no field %q", f.schema.Singular, name)
	}
	f.values[name] = value
	return nil
}

// Value returns the current text of a field.
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// State returns the lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Mode returns create or edit.
func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Errors returns the per-field messages of the last failed validation.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Close discards the form.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return
	}
	f.state = StateClosed
	f.values = nil
	f.target = nil
	f.errors = nil
}

// Submit validates, converts and writes the record with exactly one store
// call. Validation failures return *validation.Error without touching the
// store; store failures return *ActionError. Either way the form stays open.
func (f *Form) Submit(ctx context.Context) (*model.Record, error) {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrBusy
	case StateClosed:
		f.mu.Unlock()
		return nil, ErrNotOpen
	}
	fields, err := f.convert()
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.state = StateSubmitting
	mode, target := f.mode, f.target
	f.mu.Unlock()

	var (
		saved  *model.Record
		action = "saving"
	)
	if mode == ModeCreate {
		saved, err = f.store.Create(ctx, f.schema.Kind, fields)
	} else {
		action = "updating"
		next := target.Clone()
		next.Fields = fields
		saved, err = f.store.Update(ctx, f.schema.Kind, next)
	}

	f.mu.Lock()
	if err != nil {
		f.state = StateOpen
		f.mu.Unlock()
		return nil, &ActionError{Action: action, Noun: f.schema.Singular, Err: err}
	}
	f.state = StateClosed
	f.values = nil
	f.target = nil
	f.errors = nil
	f.mu.Unlock()

	if f.onSaved != nil {
		if err := f.onSaved(ctx, saved); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// convert must be called with mu held.
func (f *Form) convert() (map[string]any, error) {
	verr := &validation.Error{}
	fields := make(map[string]any, len(f.schema.Fields))
	for _, field := range f.schema.Fields {
		val, msg := ParseInput(f.validator, field, f.values[field.Name])
		if msg != "" {
			verr.Add(field.Name, msg)
			continue
		}
		fields[field.Name] = val
	}
	if err := verr.OrNil(); err != nil {
		f.errors = verr.Fields
		return nil, err
	}
	f.errors = nil
	return fields, nil
}
