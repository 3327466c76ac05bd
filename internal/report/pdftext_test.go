package report

import (
	"bytes"
	"strings"
	"testing"

	pdf "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/require"
)

// pdfText reads a rendered document back as plain text, one page per line.
func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var sb strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		require.NoError(t, err, "page %d", i)
		sb.WriteString(content)
		sb.WriteByte('\n')
	}
	return sb.String()
}
