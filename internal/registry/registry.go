// Package registry records processed documents and their articles in SQLite.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cpslyse/lexaudit/internal/article"
	_ "modernc.org/sqlite"
)

// Document kinds.
const (
	KindDecree = "decree"
	KindUpload = "upload"
)

// Document statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

// Document is one processed file.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Kind        string    `json:"kind"`
	ContentHash string    `json:"content_hash"`
	PageCount   int       `json:"page_count"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
	RawText     string    `json:"raw_text,omitempty"`
}

// Article is a segmented article belonging to a document.
type Article struct {
	DocumentID    string `json:"document_id"`
	Position      int    `json:"position"`
	ArticleNumber string `json:"article_number"`
	Content       string `json:"content"`
}

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

const selectDocumentFields = `id, filename, kind, content_hash, page_count, status, uploaded_at, raw_text`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			kind TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			page_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			uploaded_at INTEGER NOT NULL,
			raw_text TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(kind, content_hash);

		CREATE TABLE IF NOT EXISTS articles (
			document_id TEXT NOT NULL REFERENCES documents(id),
			position INTEGER NOT NULL,
			article_number TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (document_id, position)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveDocument stores a document together with its articles in one transaction.
func (d *DB) SaveDocument(doc Document, records []article.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO documents (`+selectDocumentFields+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Kind, doc.ContentHash, doc.PageCount,
		doc.Status, doc.UploadedAt.Unix(), doc.RawText,
	)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.Filename, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO articles (document_id, position, article_number, content)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing article insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(doc.ID, i, r.Number, r.Content); err != nil {
			return fmt.Errorf("inserting article %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument returns the document with the given id, or nil if absent.
func (d *DB) GetDocument(id string) (*Document, error) {
	row := d.db.QueryRow(`SELECT `+selectDocumentFields+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

// FindByHash returns the first document of the given kind with the content hash,
// or nil if none exists.
func (d *DB) FindByHash(kind, hash string) (*Document, error) {
	row := d.db.QueryRow(`SELECT `+selectDocumentFields+` FROM documents
		WHERE kind = ? AND content_hash = ? AND status = ?
		ORDER BY uploaded_at LIMIT 1`, kind, hash, StatusProcessed)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

// SetStatus updates a document's status.
func (d *DB) SetStatus(id, status string) error {
	res, err := d.db.Exec(`UPDATE documents SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s not found", id)
	}
	return nil
}

// ListDocuments returns documents of a kind, oldest first. An empty kind lists all.
// Raw text is omitted.
func (d *DB) ListDocuments(kind string) ([]Document, error) {
	query := `SELECT id, filename, kind, content_hash, page_count, status, uploaded_at, '' FROM documents`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY uploaded_at, rowid`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// ListArticles returns a document's articles in document order.
func (d *DB) ListArticles(documentID string) ([]Article, error) {
	rows, err := d.db.Query(`
		SELECT document_id, position, article_number, content
		FROM articles WHERE document_id = ? ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.DocumentID, &a.Position, &a.ArticleNumber, &a.Content); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// Count returns the number of documents of a kind. An empty kind counts all.
func (d *DB) Count(kind string) (int, error) {
	var count int
	var err error
	if kind == "" {
		err = d.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count)
	} else {
		err = d.db.QueryRow(`SELECT COUNT(*) FROM documents WHERE kind = ?`, kind).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*Document, error) {
	var doc Document
	var uploadedAt int64
	err := s.Scan(&doc.ID, &doc.Filename, &doc.Kind, &doc.ContentHash,
		&doc.PageCount, &doc.Status, &uploadedAt, &doc.RawText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.UploadedAt = time.Unix(uploadedAt, 0).UTC()
	return &doc, nil
}
