package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cpslyse/lexaudit/internal/article"
	"github.com/cpslyse/lexaudit/internal/registry"
	"github.com/cpslyse/lexaudit/internal/textsource"
)

// Result summarizes one decree ingestion.
type Result struct {
	DocumentID  string        `json:"document_id,omitempty"`
	Source      string        `json:"source"`
	ContentHash string        `json:"content_hash"`
	PageCount   int           `json:"page_count"`
	Articles    int           `json:"articles"`
	Embedded    int           `json:"embedded"`
	Skipped     int           `json:"skipped"`
	EntryIDs    []string      `json:"entry_ids,omitempty"`
	Duplicate   bool          `json:"duplicate,omitempty"`
	Duration    time.Duration `json:"-"`
}

// AddDecree extracts, segments and embeds a reference decree and inserts
// its articles into the store.
//
// A decree whose text was already ingested is reported as a duplicate and
// left alone. Store errors are returned unwrapped so callers can match
// them with errors.Is.
func (p *Pipeline) AddDecree(ctx context.Context, path string) (*Result, error) {
	doc, err := p.extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	doc.Name = sourceName(doc, path)
	return p.AddDecreeDocument(ctx, doc)
}

// AddDecreeDocument ingests an already extracted decree.
func (p *Pipeline) AddDecreeDocument(ctx context.Context, doc textsource.Document) (*Result, error) {
	start := p.now()
	result := &Result{
		Source:      doc.Name,
		ContentHash: Fingerprint(doc.Text),
		PageCount:   doc.PageCount,
	}

	if p.registry != nil {
		existing, err := p.registry.FindByHash(registry.KindDecree, result.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("checking for duplicate: %w", err)
		}
		if existing != nil {
			p.logger.Info("decree already ingested", "source", doc.Name, "document_id", existing.ID)
			result.DocumentID = existing.ID
			result.Duplicate = true
			return result, nil
		}
	}

	records := article.Segment(doc.Text)
	result.Articles = len(records)

	docID, err := p.register(doc, registry.KindDecree, result.ContentHash, records)
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", doc.Name, err)
	}
	result.DocumentID = docID

	kept := article.Filter(records, p.minLen)
	result.Skipped = len(records) - len(kept)

	for i, rec := range kept {
		p.report(i+1, len(kept))

		id, err := p.embedAndInsert(ctx, doc.Name, rec)
		if err != nil {
			p.setStatus(docID, registry.StatusFailed)
			return result, err
		}
		if id == "" {
			result.Skipped++
			continue
		}
		result.Embedded++
		result.EntryIDs = append(result.EntryIDs, id)
	}

	p.setStatus(docID, registry.StatusProcessed)
	result.Duration = p.now().Sub(start)
	p.logger.Debug("decree ingested", "source", doc.Name,
		"articles", result.Articles, "embedded", result.Embedded, "skipped", result.Skipped)
	return result, nil
}

func (p *Pipeline) embedAndInsert(ctx context.Context, source string, rec article.Record) (string, error) {
	emb, err := p.provider.Embed(ctx, rec.Content)
	if err != nil {
		return "", fmt.Errorf("embedding article %s of %s: %w", rec.Number, source, err)
	}
	return p.store.Insert(ctx, rec.Content, rec.Number, source, emb.Vector)
}
