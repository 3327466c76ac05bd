package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/coedash/internal/model"
)

func TestNumberGrouping(t *testing.T) {
	f := NewFormatter("en-US")
	assert.Equal(t, "1,500,000", f.Number(1500000))
	assert.Equal(t, "20", f.Number(20))
}

func TestCellRendering(t *testing.T) {
	f := NewFormatter("en")
	s := projectSchema(t)
	amount, _ := s.Field("amountInPKRM")
	team, _ := s.Field("rndTeam")
	assert.Equal(t, "1,500,000", f.Cell(amount, 1500000.0))
	assert.Equal(t, "Alice, Bob", f.Cell(team, []string{"Alice", "Bob"}))
	assert.Equal(t, "", f.Cell(amount, nil))

	internships, err := SchemaFor(model.KindInternships)
	require.NoError(t, err)
	year, _ := internships.Field("year")
	assert.Equal(t, "2024", f.Cell(year, 2024.0))
}

func TestCellsFollowColumns(t *testing.T) {
	f := NewFormatter("en")
	s, err := SchemaFor(model.KindEvents)
	require.NoError(t, err)
	rec := &model.Record{ID: "e1", Fields: map[string]any{"eventName": "Expo", "attendees": 1200.0}}
	cols := Columns(s)
	cells := f.Cells(s, rec)
	require.Len(t, cells, len(cols))
	assert.Equal(t, "e1", cells[0])
	assert.Equal(t, "Expo", cells[1])
	assert.Equal(t, "1,200", cells[5])
	assert.Equal(t, "", cells[6])
}

func TestSnapshotKeyOrder(t *testing.T) {
	s, err := SchemaFor(model.KindEvents)
	require.NoError(t, err)
	link := "http://x/files/pdfs/u1/a.pdf"
	rows := Snapshot(s, []*model.Record{{ID: "e1", OwnerID: "u1", FileLink: &link, Fields: map[string]any{"eventName": "Expo"}}})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"_id", "eventName", "date", "location", "organizer", "attendees", "fileLink", "ownerId"}, rows[0].Keys())
	v, _ := rows[0].Get("fileLink")
	assert.Equal(t, link, v)
}

func TestEverySchemaIsConsistent(t *testing.T) {
	for _, kind := range model.Kinds() {
		s, err := SchemaFor(kind)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, s.SourceType)
		assert.NotEmpty(t, s.FilterFields(), kind)
		if s.DateField != "" {
			f, ok := s.Field(s.DateField)
			require.True(t, ok, kind)
			assert.Equal(t, Date, f.Type, kind)
		}
		back, err := SchemaForSourceType(s.SourceType)
		require.NoError(t, err)
		assert.Equal(t, kind, back.Kind)
	}
}
