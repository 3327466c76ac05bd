package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/coedash/internal/model"
	pdfutil "github.com/dharsanguruparan/coedash/internal/pdf"
)

func rows(t *testing.T, data string) []*model.Row {
	t.Helper()
	var out []*model.Row
	require.NoError(t, json.Unmarshal([]byte(data), &out))
	return out
}

func TestRenderCSVExact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, rows(t, `[{"a":1,"b":2},{"a":3,"b":4}]`)))
	assert.Equal(t, "a,b\n1,2\n3,4\n", buf.String())
}

func TestRenderCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestTabulateUsesFirstRowShape(t *testing.T) {
	headers, cells := Tabulate(rows(t, `[
		{"_id":"r1","title":"Solar","team":["Alice","Bob"],"amount":1500000,"link":null},
		{"_id":"r2","title":"Water","extra":"dropped"}
	]`))
	assert.Equal(t, []string{"title", "team", "amount", "link"}, headers)
	assert.Equal(t, [][]string{
		{"Solar", "Alice,Bob", "1500000", ""},
		{"Water", "", "", ""},
	}, cells)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "1500000", Stringify(1500000.0))
	assert.Equal(t, "0.25", Stringify(json.Number("0.25")))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "a,b", Stringify([]string{"a", "b"}))
}

type fakeStore struct {
	saved    []*model.Report
	createFn func(r *model.Report) (*model.Report, error)
}

func (f *fakeStore) CreateReport(_ context.Context, r *model.Report) (*model.Report, error) {
	if f.createFn != nil {
		return f.createFn(r)
	}
	r.ID = fmt.Sprintf("rep-%d", len(f.saved)+1)
	f.saved = append(f.saved, r)
	return r, nil
}

func (f *fakeStore) ListReports(context.Context, bool) ([]*model.Report, error) {
	return f.saved, nil
}

func (f *fakeStore) DeleteReport(context.Context, string) error { return nil }

func TestSaveFreezesSnapshot(t *testing.T) {
	store := &fakeStore{}
	g := NewGenerator(store)
	live := rows(t, `[{"_id":"r1","title":"Solar"}]`)
	criteria := map[string]string{"title": "sol"}

	rep, err := g.Save(context.Background(), " Solar projects ", "CommercializationProjects", criteria, live)
	require.NoError(t, err)
	assert.Equal(t, "Solar projects", rep.Title)

	live[0].Set("title", "Renamed later")
	criteria["title"] = "changed"
	v, _ := rep.ReportData[0].Get("title")
	assert.Equal(t, "Solar", v)
	assert.Equal(t, "sol", rep.FilterCriteria["title"])
}

func TestSaveCreatesNewReportEachTime(t *testing.T) {
	store := &fakeStore{}
	g := NewGenerator(store)
	for i := 0; i < 2; i++ {
		_, err := g.Save(context.Background(), "Same title", "Fundings", nil, nil)
		require.NoError(t, err)
	}
	assert.Len(t, store.saved, 2)
	assert.NotEqual(t, store.saved[0].ID, store.saved[1].ID)
}

func TestSaveRejectsEmptyTitle(t *testing.T) {
	store := &fakeStore{}
	_, err := NewGenerator(store).Save(context.Background(), "   ", "Fundings", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Empty(t, store.saved)
}

func sampleReport(t *testing.T, data string) *model.Report {
	return &model.Report{
		ID:         "rep-1",
		Title:      "Quarterly Fundings",
		SourceType: "Fundings",
		CreatedBy:  "director@coe.example.org",
		CreatedAt:  time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC),
		ReportData: rows(t, data),
	}
}

func TestRenderPDFContainsHeaderBlockAndTable(t *testing.T) {
	var buf bytes.Buffer
	rep := sampleReport(t, `[{"_id":"r1","projectTitle":"SolarGrid","fundingSource":"HEC"},{"_id":"r2","projectTitle":"WaterWorks","fundingSource":"USAID"}]`)
	require.NoError(t, RenderPDF(&buf, rep))
	require.True(t, strings.HasPrefix(buf.String(), "%PDF-"))

	pages, err := pdfutil.PageCount(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	text := pdfText(t, buf.Bytes())
	for _, want := range []string{"Quarterly Fundings", "Source Type: Fundings", "Created By: director@coe.example.org", "projectTitle", "fundingSource", "SolarGrid", "WaterWorks", "USAID", "Page 1"} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "r1")
}

func TestRenderPDFEmptyData(t *testing.T) {
	var buf bytes.Buffer
	rep := sampleReport(t, `[]`)
	rep.CreatedBy = ""
	require.NoError(t, RenderPDF(&buf, rep))
	text := pdfText(t, buf.Bytes())
	assert.Contains(t, text, "No report data available")
	assert.Contains(t, text, "Created By: N/A")
}

func TestRenderPDFPaginatesLongTables(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 120; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"_id":"r%d","title":"Row %d"}`, i, i)
	}
	sb.WriteString("]")
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, sampleReport(t, sb.String())))
	pages, err := pdfutil.PageCount(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestFormatHelpers(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
	assert.Equal(t, "Q1 a_b.csv", FileName(&model.Report{Title: "Q1 a/b"}, FormatCSV))
}
