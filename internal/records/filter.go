package records

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

// Criteria is the transient set of list filters. Text holds one substring per
// field; DateFrom and DateTo bound the schema's date field inclusively.
type Criteria struct {
	Text     map[string]string
	DateFrom string
	DateTo   string
}

// Snapshot keys used when criteria are embedded in a report.
const (
	CriteriaDateFrom = "dateFrom"
	CriteriaDateTo   = "dateTo"
)

// IsEmpty reports whether no filter would exclude anything.
func (c Criteria) IsEmpty() bool {
	for _, v := range c.Text {
		if v != "" {
			return false
		}
	}
	return c.DateFrom == "" && c.DateTo == ""
}

// Validate checks that every text filter names a filterable field and that the
// date bounds are canonical dates.
func (c Criteria) Validate(s *Schema, v *validation.Validator) error {
	verr := &validation.Error{}
	names := make([]string, 0, len(c.Text))
	for name := range c.Text {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, ok := s.Field(name)
		if !ok || !f.Filter {
			verr.Add(name, fmt.Sprintf("%s cannot be filtered on", name))
		}
	}
	if (c.DateFrom != "" || c.DateTo != "") && s.DateField == "" {
		verr.Add(CriteriaDateFrom, fmt.Sprintf("%s records have no date filter", s.Singular))
	}
	if c.DateFrom != "" {
		if msg := v.Field("From date", c.DateFrom, "isodate"); msg != "" {
			verr.Add(CriteriaDateFrom, msg)
		}
	}
	if c.DateTo != "" {
		if msg := v.Field("To date", c.DateTo, "isodate"); msg != "" {
			verr.Add(CriteriaDateTo, msg)
		}
	}
	return verr.OrNil()
}

// Snapshot flattens the criteria for storage on a report. Empty values are
// dropped.
func (c Criteria) Snapshot() map[string]string {
	out := make(map[string]string, len(c.Text)+2)
	for k, v := range c.Text {
		if v != "" {
			out[k] = v
		}
	}
	if c.DateFrom != "" {
		out[CriteriaDateFrom] = c.DateFrom
	}
	if c.DateTo != "" {
		out[CriteriaDateTo] = c.DateTo
	}
	return out
}

// Apply returns the records of recs matching c, in their original order. The
// input slice is never modified.
func Apply(s *Schema, recs []*model.Record, c Criteria) []*model.Record {
	out := make([]*model.Record, 0, len(recs))
	for _, r := range recs {
		if Matches(s, r, c) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single record passes c.
func Matches(s *Schema, r *model.Record, c Criteria) bool {
	for name, want := range c.Text {
		if want == "" {
			continue
		}
		got := strings.ToLower(FieldText(r.Field(name)))
		if !strings.Contains(got, strings.ToLower(want)) {
			return false
		}
	}
	if s.DateField == "" || (c.DateFrom == "" && c.DateTo == "") {
		return true
	}
	d := canonicalDate(FieldText(r.Field(s.DateField)))
	if d == "" {
		return false
	}
	if c.DateFrom != "" && d < canonicalDate(c.DateFrom) {
		return false
	}
	if c.DateTo != "" && d > canonicalDate(c.DateTo) {
		return false
	}
	return true
}

// FieldText is the plain string form of a field value used for matching.
func FieldText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprint(val)
	}
}

// canonicalDate truncates timestamps such as 2024-01-31T00:00:00Z to their
// YYYY-MM-DD prefix so string order equals date order.
func canonicalDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(validation.DateLayout) {
		s = s[:len(validation.DateLayout)]
	}
	return s
}
