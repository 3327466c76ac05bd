package records

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dharsanguruparan/coedash/internal/validation"
)

// validationTag returns the validator tag for non-empty values of t.
func validationTag(t FieldType) string {
	switch t {
	case Date:
		return "isodate"
	case Email:
		return "looseemail"
	case Phone:
		return "number,len=10"
	case Number, Year:
		return "realnumber"
	default:
		return ""
	}
}

// ParseInput converts the text a user typed for field into the value stored on
// the record. It returns a message when the text is invalid.
func ParseInput(v *validation.Validator, field Field, raw string) (any, string) {
	raw = strings.TrimSpace(raw)
	switch field.Type {
	case List:
		items := SplitList(raw)
		if field.Required && len(items) == 0 {
			return nil, field.Label + " is required"
		}
		return items, ""
	case Number, Year:
		if raw == "" {
			if field.Required {
				return nil, field.Label + " is required"
			}
			return nil, ""
		}
		if msg := v.Field(field.Label, raw, "realnumber"); msg != "" {
			return nil, msg
		}
		n, _ := validation.ParseNumber(raw)
		return n, ""
	default:
		if raw == "" {
			if field.Required {
				return nil, field.Label + " is required"
			}
			return "", ""
		}
		if tag := validationTag(field.Type); tag != "" {
			if msg := v.Field(field.Label, raw, tag); msg != "" {
				return nil, msg
			}
		}
		return raw, ""
	}
}

// SplitList splits comma separated input, trimming items and dropping empty
// ones. Empty input yields an empty, non-nil list.
func SplitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// InputText is the inverse of ParseInput, used to fill an edit form.
func InputText(field Field, v any) string {
	if list, ok := v.([]string); ok {
		return strings.Join(list, ", ")
	}
	return FieldText(v)
}

// CheckFields validates a decoded record body against s. The API uses it to
// reject payloads whose values have the wrong JSON type.
func CheckFields(v *validation.Validator, s *Schema, fields map[string]any) error {
	verr := &validation.Error{}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := s.Field(name); !ok {
			verr.Add(name, fmt.Sprintf("%s is not a %s field", name, s.Singular))
		}
	}
	for _, field := range s.Fields {
		val, present := fields[field.Name]
		if !present || val == nil {
			if field.Required {
				verr.Add(field.Name, field.Label+" is required")
			}
			continue
		}
		switch field.Type {
		case Number, Year:
			if _, ok := val.(float64); !ok {
				verr.Add(field.Name, field.Label+" must be a number")
			}
		case List:
			list, ok := val.([]string)
			if !ok {
				verr.Add(field.Name, field.Label+" must be a list of strings")
			} else if field.Required && len(list) == 0 {
				verr.Add(field.Name, field.Label+" is required")
			}
		default:
			s, ok := val.(string)
			if !ok {
				verr.Add(field.Name, field.Label+" must be a string")
				continue
			}
			if s == "" {
				if field.Required {
					verr.Add(field.Name, field.Label+" is required")
				}
				continue
			}
			if tag := validationTag(field.Type); tag != "" {
				if msg := v.Field(field.Label, s, tag); msg != "" {
					verr.Add(field.Name, msg)
				}
			}
		}
	}
	return verr.OrNil()
}
