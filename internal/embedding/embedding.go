// Package embedding provides vector embedding generation for text.
package embedding

// Embedding represents a vector embedding of text.
// An empty Vector means the text had nothing to embed.
type Embedding struct {
	Vector []float64
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// IsEmpty reports whether the embedding carries no vector.
func (e Embedding) IsEmpty() bool {
	return len(e.Vector) == 0
}
