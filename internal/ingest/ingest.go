// Package ingest connects text extraction, segmentation, embedding and
// storage into the decree ingestion and document audit pipelines.
package ingest

import (
	"context"
	"encoding/hex"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cpslyse/lexaudit/internal/article"
	"github.com/cpslyse/lexaudit/internal/embedding"
	"github.com/cpslyse/lexaudit/internal/registry"
	"github.com/cpslyse/lexaudit/internal/similarity"
	"github.com/cpslyse/lexaudit/internal/textsource"
	"github.com/cpslyse/lexaudit/internal/vecstore"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// ProgressReporter receives progress updates while articles are embedded.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// ExtractFunc turns a file into text.
type ExtractFunc func(ctx context.Context, path string) (textsource.Document, error)

// Pipeline runs decree ingestion and document audits.
type Pipeline struct {
	provider embedding.Provider
	store    *vecstore.Store
	engine   *similarity.Engine
	registry *registry.DB
	extract  ExtractFunc
	minLen   int
	progress ProgressReporter
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRegistry records processed documents and their articles in db.
func WithRegistry(db *registry.DB) Option {
	return func(p *Pipeline) {
		p.registry = db
	}
}

// WithExtractor replaces the extension-based text extractor.
func WithExtractor(fn ExtractFunc) Option {
	return func(p *Pipeline) {
		p.extract = fn
	}
}

// WithMinArticleLength sets the content length at or below which articles
// are not embedded.
func WithMinArticleLength(n int) Option {
	return func(p *Pipeline) {
		p.minLen = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a pipeline that embeds with provider and stores decree
// articles in store.
func New(provider embedding.Provider, store *vecstore.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		store:    store,
		engine:   similarity.New(store),
		extract:  textsource.Extract,
		minLen:   article.DefaultMinContentLength,
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetProgressReporter sets the progress reporter for the pipeline.
func (p *Pipeline) SetProgressReporter(reporter ProgressReporter) {
	p.progress = reporter
}

func (p *Pipeline) report(current, total int) {
	if p.progress != nil {
		p.progress.OnProgress(current, total)
	}
}

// Fingerprint returns the hex BLAKE2b-256 digest of extracted text.
func Fingerprint(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// register stores the document and its segmented articles when a registry
// is configured. It returns the document id either way.
func (p *Pipeline) register(doc textsource.Document, kind, hash string, records []article.Record) (string, error) {
	id := p.newID()
	if p.registry == nil {
		return id, nil
	}
	err := p.registry.SaveDocument(registry.Document{
		ID:          id,
		Filename:    doc.Name,
		Kind:        kind,
		ContentHash: hash,
		PageCount:   doc.PageCount,
		Status:      registry.StatusPending,
		UploadedAt:  p.now(),
		RawText:     doc.Text,
	}, records)
	return id, err
}

func (p *Pipeline) setStatus(id, status string) {
	if p.registry == nil {
		return
	}
	if err := p.registry.SetStatus(id, status); err != nil {
		p.logger.Warn("updating document status", "document_id", id, "status", status, "error", err)
	}
}

func sourceName(doc textsource.Document, path string) string {
	if doc.Name != "" {
		return doc.Name
	}
	return filepath.Base(path)
}
