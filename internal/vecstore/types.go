// Package vecstore persists article embeddings in a single JSON document.
package vecstore

import "errors"

// Errors returned by store operations.
var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrCorruptStore      = errors.New("corrupt store")
	ErrPersistenceWrite  = errors.New("persisting store")
	ErrInvalidEmbedding  = errors.New("embedding contains NaN or Inf")
	ErrUnsupportedFormat = errors.New("unsupported store version")
)

// CurrentVersion is the on-disk format version written by this package.
// Version 0 files (no version key) are read as the same layout.
const CurrentVersion = 1

// RecordType distinguishes reference decree entries from uploaded-document entries.
type RecordType string

const (
	RecordDecree RecordType = "decree"
	RecordUpload RecordType = "upload"
)

// Metadata describes where a stored text came from.
type Metadata struct {
	ArticleNumber string     `json:"article_number"`
	Source        string     `json:"source"`
	RecordType    RecordType `json:"type"`
}

// Entry is one stored article with its embedding.
type Entry struct {
	ID        string
	Text      string
	Metadata  Metadata
	Embedding []float64
}

func (e Entry) clone() Entry {
	e.Embedding = append([]float64(nil), e.Embedding...)
	return e
}
