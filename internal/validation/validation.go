// Package validation wraps go-playground/validator with the rules used by the
// record forms and the sign-up flow, and reports failures per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Error maps a field name to a human readable message.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add records msg for field unless one is already present.
func (e *Error) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns e when it carries at least one message.
func (e *Error) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validator validates single values by tag and whole structs by their
// `validate` tags.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom rules registered.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock is New with an injectable clock for the notfuture rule.
func NewWithClock(now func() time.Time) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	registerRules(v, now)
	return &Validator{validate: v}
}

// Field validates value against tag and returns "<label> <problem>", or "" when
// the value is valid.
func (v *Validator) Field(label string, value any, tag string) string {
	err := v.validate.Var(value, tag)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return label + " " + describe(verrs[0])
	}
	return label + " is invalid"
}

// Struct validates s and returns an *Error keyed by json field name.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Add(fe.Field(), fe.Field()+" "+describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "looseemail", "email":
		return "must be a valid email address"
	case "number":
		return "must contain digits only"
	case "len":
		return fmt.Sprintf("must be exactly %s characters long", fe.Param())
	case "realnumber":
		return "must be a number"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "notfuture":
		return "cannot be in the future"
	case "strongpassword":
		return "must be at least 8 characters and contain an uppercase letter, a lowercase letter, a digit and one of @$!%*?&"
	case "userrole":
		return "must be one of: director, department head, wing head, RO/Dev"
	default:
		return "is invalid"
	}
}
