package records

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

func project(id, title, supervisor, signed string) *model.Record {
	return &model.Record{
		ID:      id,
		OwnerID: "u1",
		Fields: map[string]any{
			"projectTitle":       title,
			"supervisor":         supervisor,
			"clientCompany":      "Acme",
			"dateOfContractSign": signed,
		},
	}
}

func projectSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := SchemaFor(model.KindProjects)
	require.NoError(t, err)
	return s
}

func TestApplyEmptyCriteriaIsIdentity(t *testing.T) {
	s := projectSchema(t)
	recs := []*model.Record{
		project("1", "Solar Grid", "Dr. Khan", "2024-01-10"),
		project("2", "Water Filter", "Dr. Ali", ""),
	}
	got := Apply(s, recs, Criteria{})
	assert.Equal(t, recs, got)
	got = Apply(s, recs, Criteria{Text: map[string]string{"projectTitle": ""}})
	assert.Equal(t, recs, got)
}

func TestApplyCaseInsensitiveSubstring(t *testing.T) {
	s := projectSchema(t)
	recs := []*model.Record{
		project("1", "Solar Grid", "Dr. Khan", "2024-01-10"),
		project("2", "Water Filter", "Dr. Ali", "2024-02-10"),
		project("3", "Grid Balancer", "Dr. KHANUM", "2024-03-10"),
	}
	for _, needle := range []string{"grid", "GRID", "r", "khan", "zzz"} {
		got := Apply(s, recs, Criteria{Text: map[string]string{"projectTitle": needle}})
		for _, r := range recs {
			want := strings.Contains(strings.ToLower(r.Fields["projectTitle"].(string)), strings.ToLower(needle))
			assert.Equal(t, want, containsRecord(got, r), "needle %q record %s", needle, r.ID)
		}
	}
	got := Apply(s, recs, Criteria{Text: map[string]string{"supervisor": "khan"}})
	assert.Len(t, got, 2)
}

func TestApplyDateBoundsAreInclusive(t *testing.T) {
	s := projectSchema(t)
	recs := []*model.Record{
		project("before", "a", "x", "2024-01-09"),
		project("from", "b", "x", "2024-01-10"),
		project("mid", "c", "x", "2024-01-20T10:00:00Z"),
		project("to", "d", "x", "2024-01-31"),
		project("after", "e", "x", "2024-02-01"),
		project("undated", "f", "x", ""),
	}
	got := Apply(s, recs, Criteria{DateFrom: "2024-01-10", DateTo: "2024-01-31"})
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"from", "mid", "to"}, ids)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := projectSchema(t)
	recs := []*model.Record{
		project("1", "Solar", "x", "2024-01-10"),
		project("2", "Water", "x", "2024-01-11"),
	}
	before := append([]*model.Record(nil), recs...)
	_ = Apply(s, recs, Criteria{Text: map[string]string{"projectTitle": "water"}})
	assert.Equal(t, before, recs)
}

func TestYearFilterMatchesNumberText(t *testing.T) {
	s, err := SchemaFor(model.KindInternships)
	require.NoError(t, err)
	recs := []*model.Record{
		{ID: "a", Fields: map[string]any{"year": 2023.0}},
		{ID: "b", Fields: map[string]any{"year": 2024.0}},
	}
	got := Apply(s, recs, Criteria{Text: map[string]string{"year": "24"}})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestCriteriaValidate(t *testing.T) {
	v := validation.New()
	s := projectSchema(t)
	assert.NoError(t, Criteria{Text: map[string]string{"supervisor": "x"}, DateFrom: "2024-01-01"}.Validate(s, v))

	err := Criteria{Text: map[string]string{"remarks": "x"}, DateTo: "31-01-2024"}.Validate(s, v)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "remarks")
	assert.Contains(t, verr.Fields, CriteriaDateTo)

	internships, _ := SchemaFor(model.KindInternships)
	assert.Error(t, Criteria{DateFrom: "2024-01-01"}.Validate(internships, v))
}

func TestCriteriaSnapshot(t *testing.T) {
	c := Criteria{Text: map[string]string{"pi": "khan", "title": ""}, DateFrom: "2024-01-01"}
	assert.Equal(t, map[string]string{"pi": "khan", "dateFrom": "2024-01-01"}, c.Snapshot())
	assert.False(t, c.IsEmpty())
	assert.True(t, Criteria{Text: map[string]string{"pi": ""}}.IsEmpty())
}

func containsRecord(recs []*model.Record, r *model.Record) bool {
	for _, x := range recs {
		if x == r {
			return true
		}
	}
	return false
}
