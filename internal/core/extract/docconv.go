// Package extract converts raw PDF bytes into per-page text using docconv.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"docchat/internal/core"
)

var _ core.DocumentExtractor = (*PDFExtractor)(nil)

// PDFExtractor extracts text with docconv. The underlying pdftotext output
// separates pages with form feeds, which is how page numbers are recovered;
// when no form feed is present the whole text counts as page 1.
type PDFExtractor struct {
	useReadability bool
}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{useReadability: false}
}

func (e *PDFExtractor) Extract(ctx context.Context, raw []byte) ([]core.Page, error) {
	res, err := docconv.Convert(bytes.NewReader(raw), "application/pdf", e.useReadability)
	if err != nil {
		return nil, fmt.Errorf("docconv: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return SplitPages(res.Body), nil
}

// SplitPages cuts extracted text into pages on form feed boundaries,
// assigning 1-based page numbers. Whitespace-only pages keep their number
// but carry no text.
func SplitPages(body string) []core.Page {
	parts := strings.Split(body, "\f")
	pages := make([]core.Page, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, core.Page{Number: i + 1, Text: strings.TrimSpace(part)})
	}
	return pages
}
