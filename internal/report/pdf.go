package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dharsanguruparan/coedash/internal/model"
)

const (
	pageMargin   = 40.0
	tableFont    = 8.0
	rowHeight    = 14.0
	cellPadding  = 4.0
	timestampFmt = "2006-01-02 15:04:05"
)

// RenderPDF writes r as a landscape A4 document: a header block, then the
// report data as a table whose header row repeats on every page, and a page
// number footer.
func RenderPDF(w io.Writer, r *model.Report) error {
	doc := fpdf.New("L", "pt", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(false, pageMargin)
	doc.SetTitle(r.Title, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFooterFunc(func() {
		doc.SetY(-pageMargin + 10)
		doc.SetFont("Helvetica", "", 8)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 22, tr(r.Title), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	createdBy := r.CreatedBy
	if createdBy == "" {
		createdBy = "N/A"
	}
	for _, line := range []string{
		"Source Type: " + r.SourceType,
		"Created At: " + formatTime(r.CreatedAt),
		"Created By: " + createdBy,
		"Last Updated: " + formatTime(r.UpdatedAt),
	} {
		doc.CellFormat(0, 14, tr(line), "", 1, "L", false, 0, "")
	}
	doc.Ln(10)
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 18, "Report Data:", "", 1, "L", false, 0, "")

	headers, cells := Tabulate(r.ReportData)
	if len(headers) == 0 {
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 14, "No report data available", "", 1, "L", false, 0, "")
		return output(doc, w)
	}

	pageW, pageH := doc.GetPageSize()
	colW := (pageW - 2*pageMargin) / float64(len(headers))
	bottom := pageH - pageMargin - 10

	drawHeader := func() {
		doc.SetFont("Helvetica", "B", tableFont)
		doc.SetFillColor(41, 128, 185)
		doc.SetTextColor(255, 255, 255)
		for _, h := range headers {
			doc.CellFormat(colW, rowHeight, fit(doc, tr, h, colW), "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Helvetica", "", tableFont)
		doc.SetTextColor(0, 0, 0)
	}
	drawHeader()
	for _, line := range cells {
		if doc.GetY()+rowHeight > bottom {
			doc.AddPage()
			drawHeader()
		}
		for _, cell := range line {
			doc.CellFormat(colW, rowHeight, fit(doc, tr, cell, colW), "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
	return output(doc, w)
}

func output(doc *fpdf.Fpdf, w io.Writer) error {
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// fit encodes s with tr, truncating it with an ellipsis so it fits a column
// of width w.
func fit(doc *fpdf.Fpdf, tr func(string) string, s string, w float64) string {
	limit := w - cellPadding
	if doc.GetStringWidth(tr(s)) <= limit {
		return tr(s)
	}
	runes := []rune(s)
	for len(runes) > 0 && doc.GetStringWidth(tr(string(runes)+"...")) > limit {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes) + "...")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(timestampFmt)
}
