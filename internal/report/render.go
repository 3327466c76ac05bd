package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// Format is an export format.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatCSV Format = "csv"
)

// ParseFormat accepts "pdf" or "csv".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns "{title}.{ext}" with path separators replaced.
func FileName(r *model.Report, f Format) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(r.Title)
	return name + "." + string(f)
}

// Render writes r in format f.
func Render(w io.Writer, r *model.Report, f Format) error {
	switch f {
	case FormatPDF:
		return RenderPDF(w, r)
	case FormatCSV:
		return RenderCSV(w, r.ReportData)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// Tabulate derives columns from the first row, without the identity key.
// Later rows are projected onto those columns: extra keys are dropped and
// missing keys render as "".
func Tabulate(rows []*model.Row) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	var headers []string
	for _, k := range rows[0].Keys() {
		if k != model.KeyID {
			headers = append(headers, k)
		}
	}
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			if v, ok := row.Get(h); ok {
				line[i] = Stringify(v)
			}
		}
		cells = append(cells, line)
	}
	return headers, cells
}

// Stringify renders a snapshot value. nil becomes "".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

// RenderCSV writes a header row followed by one line per row. Empty data
// produces empty output.
func RenderCSV(w io.Writer, rows []*model.Row) error {
	headers, cells := Tabulate(rows)
	if len(headers) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(cells); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
