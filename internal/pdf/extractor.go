// Package pdfutil inspects uploaded PDF documents.
package pdfutil

import (
	"errors"
	"fmt"
	"io"

	pdf "github.com/ledongthuc/pdf"
)

// ErrNoPages is returned for documents that parse but contain no pages.
var ErrNoPages = errors.New("pdf has no pages")

// open parses the document, turning parser panics on truncated input into
// errors.
func open(r io.ReaderAt, size int64) (doc *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("parse pdf: %v", rec)
		}
	}()
	doc, err = pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	if doc.NumPage() == 0 {
		return nil, ErrNoPages
	}
	return doc, nil
}

// PageCount returns the number of pages of the document at r. Uploads that
// only pretend to be PDFs fail here.
func PageCount(r io.ReaderAt, size int64) (int, error) {
	doc, err := open(r, size)
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}
