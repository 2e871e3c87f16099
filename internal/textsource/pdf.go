package textsource

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the text layer of a PDF, page by page.
type PDFExtractor struct {
	// Logger receives warnings about pages whose text cannot be decoded.
	// Nil uses slog.Default().
	Logger *slog.Logger
}

// Extract implements Extractor.
func (e PDFExtractor) Extract(ctx context.Context, path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	name := filepath.Base(path)
	text, pages, err := readPages(ctx, pdfPages{r}, name, e.logger())
	if err != nil {
		return Document{}, err
	}
	return Document{
		Name:      name,
		Text:      text,
		PageCount: pages,
	}, nil
}

func (e PDFExtractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// pageSource yields the plain text of numbered pages (1-based).
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type pdfPages struct {
	r *pdf.Reader
}

func (p pdfPages) NumPage() int {
	return p.r.NumPage()
}

func (p pdfPages) PageText(i int) (string, error) {
	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// readPages concatenates page texts, each preceded by its page marker.
// A page whose text cannot be decoded is kept as an empty page and logged.
func readPages(ctx context.Context, src pageSource, name string, logger *slog.Logger) (string, int, error) {
	total := src.NumPage()

	var builder strings.Builder
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		builder.WriteString(PageMarker(i))

		text, err := src.PageText(i)
		if err != nil {
			logger.Warn("skipping page with undecodable text",
				"document", name, "page", i, "error", err)
			continue
		}
		builder.WriteString(text)
	}

	return builder.String(), total, nil
}
