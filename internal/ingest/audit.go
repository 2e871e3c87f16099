package ingest

import (
	"context"
	"fmt"

	"github.com/cpslyse/lexaudit/internal/article"
	"github.com/cpslyse/lexaudit/internal/registry"
	"github.com/cpslyse/lexaudit/internal/similarity"
	"github.com/cpslyse/lexaudit/internal/textsource"
)

// ArticleFindings pairs an uploaded article with its nearest decree articles.
type ArticleFindings struct {
	Number  string             `json:"article_number"`
	Content string             `json:"content"`
	Matches []similarity.Match `json:"matches"`
}

// AuditReport lists the nearest reference articles for every article of an
// uploaded document. No compliance verdict is drawn from the scores.
type AuditReport struct {
	DocumentID  string            `json:"document_id"`
	Source      string            `json:"source"`
	ContentHash string            `json:"content_hash"`
	PageCount   int               `json:"page_count"`
	Skipped     int               `json:"skipped"`
	Articles    []ArticleFindings `json:"articles"`
}

// Audit extracts and segments an uploaded document, then queries the decree
// store with each article. Uploaded articles are registered but never
// inserted into the store.
func (p *Pipeline) Audit(ctx context.Context, path string, topN int) (*AuditReport, error) {
	doc, err := p.extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	doc.Name = sourceName(doc, path)
	return p.AuditDocument(ctx, doc, topN)
}

// AuditDocument audits an already extracted document.
func (p *Pipeline) AuditDocument(ctx context.Context, doc textsource.Document, topN int) (*AuditReport, error) {
	records := article.Segment(doc.Text)
	report := &AuditReport{
		Source:      doc.Name,
		ContentHash: Fingerprint(doc.Text),
		PageCount:   doc.PageCount,
		Articles:    []ArticleFindings{},
	}

	docID, err := p.register(doc, registry.KindUpload, report.ContentHash, records)
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", doc.Name, err)
	}
	report.DocumentID = docID

	kept := article.Filter(records, p.minLen)
	report.Skipped = len(records) - len(kept)

	for i, rec := range kept {
		p.report(i+1, len(kept))

		emb, err := p.provider.Embed(ctx, rec.Content)
		if err != nil {
			p.setStatus(docID, registry.StatusFailed)
			return nil, fmt.Errorf("embedding article %s of %s: %w", rec.Number, doc.Name, err)
		}

		matches, err := p.engine.Query(emb.Vector, topN)
		if err != nil {
			p.setStatus(docID, registry.StatusFailed)
			return nil, fmt.Errorf("querying article %s: %w", rec.Number, err)
		}

		report.Articles = append(report.Articles, ArticleFindings{
			Number:  rec.Number,
			Content: rec.Content,
			Matches: matches,
		})
	}

	p.setStatus(docID, registry.StatusProcessed)
	return report, nil
}
