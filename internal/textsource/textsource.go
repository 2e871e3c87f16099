// Package textsource turns uploaded documents into raw text for segmentation.
//
// Text recognition on scanned images happens outside this module; the
// extractors here read PDFs that carry a text layer and plain-text files
// produced by an OCR step.
package textsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files no extractor handles.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is the raw text of one uploaded file.
type Document struct {
	Name      string `json:"name"`
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
}

// Extractor reads a document from disk.
type Extractor interface {
	Extract(ctx context.Context, path string) (Document, error)
}

// ForPath returns the extractor for the file's extension.
func ForPath(path string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return PDFExtractor{}, nil
	case ".txt", ".text":
		return PlainExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Extract reads path with the extractor chosen by ForPath.
func Extract(ctx context.Context, path string) (Document, error) {
	ex, err := ForPath(path)
	if err != nil {
		return Document{}, err
	}
	return ex.Extract(ctx, path)
}

// PlainExtractor reads UTF-8 text files as a single page.
type PlainExtractor struct{}

// Extract implements Extractor.
func (PlainExtractor) Extract(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return Document{
		Name:      filepath.Base(path),
		Text:      string(data),
		PageCount: 1,
	}, nil
}

// PageMarker returns the separator written before page n (1-based).
// Segmentation treats it as ordinary text.
func PageMarker(n int) string {
	return fmt.Sprintf("\n--- Page %d ---\n", n)
}
