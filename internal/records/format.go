package records

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dharsanguruparan/coedash/internal/model"
)

// Formatter renders field values for display.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a Formatter for the given locale, e.g. "en-US". Unknown
// locales fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Number groups digits per locale: 1500000 becomes "1,500,000" in English.
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprintf("%v", number.Decimal(v))
}

// Cell renders v as the list view shows it.
func (f *Formatter) Cell(field Field, v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		if field.Type == Year {
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
		return f.Number(val)
	case []string:
		return strings.Join(val, ", ")
	default:
		return FieldText(v)
	}
}

// Columns returns the header labels of the list view.
func Columns(s *Schema) []string {
	out := make([]string, 0, len(s.Fields)+1)
	out = append(out, "ID")
	for _, field := range s.Fields {
		out = append(out, field.Label)
	}
	return append(out, "Attachment")
}

// Cells renders one record as a list view row matching Columns.
func (f *Formatter) Cells(s *Schema, r *model.Record) []string {
	out := make([]string, 0, len(s.Fields)+2)
	out = append(out, r.ID)
	for _, field := range s.Fields {
		out = append(out, f.Cell(field, r.Field(field.Name)))
	}
	link := ""
	if r.FileLink != nil {
		link = *r.FileLink
	}
	return append(out, link)
}

// Snapshot converts records into report rows. Keys are _id, the schema fields
// in order, fileLink and ownerId.
func Snapshot(s *Schema, recs []*model.Record) []*model.Row {
	rows := make([]*model.Row, 0, len(recs))
	for _, r := range recs {
		row := model.NewRow()
		row.Set(model.KeyID, r.ID)
		for _, field := range s.Fields {
			v := r.Field(field.Name)
			if list, ok := v.([]string); ok {
				v = append([]string(nil), list...)
			}
			row.Set(field.Name, v)
		}
		if r.FileLink != nil {
			row.Set(model.KeyFileLink, *r.FileLink)
		} else {
			row.Set(model.KeyFileLink, nil)
		}
		row.Set(model.KeyOwnerID, r.OwnerID)
		rows = append(rows, row)
	}
	return rows
}
