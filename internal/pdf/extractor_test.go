package pdfutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPageDoc(t *testing.T) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range []string{"first", "second"} {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	data := twoPageDoc(t)
	n, err := PageCount(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPageCountRejectsImpostors(t *testing.T) {
	for name, data := range map[string][]byte{
		"plain text":  []byte("hello, not a pdf"),
		"header only": []byte("%PDF-1.4\n%%EOF"),
		"truncated":   twoPageDoc(t)[:200],
	} {
		t.Run(strings.ReplaceAll(name, " ", "_"), func(t *testing.T) {
			_, err := PageCount(bytes.NewReader(data), int64(len(data)))
			assert.Error(t, err)
		})
	}
}
