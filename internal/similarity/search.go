// Package similarity ranks stored article embeddings against a query vector.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cpslyse/lexaudit/internal/vecstore"
)

// ErrEntryNotFound is returned by FindSimilar for an unknown entry id.
var ErrEntryNotFound = errors.New("entry not in store")

// SnapshotSource supplies the entries to search. *vecstore.Store implements it.
type SnapshotSource interface {
	Snapshot() *vecstore.Snapshot
}

// Match is one ranked result. Distance is 1 - Similarity and lies in [0, 2].
type Match struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   vecstore.Metadata `json:"metadata"`
	Similarity float64           `json:"similarity"`
	Distance   float64           `json:"distance"`
}

// Engine performs exhaustive cosine-similarity search over a store.
type Engine struct {
	source SnapshotSource
}

// New creates an engine reading from source.
func New(source SnapshotSource) *Engine {
	return &Engine{source: source}
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
// Vectors of different length, empty vectors, and zero vectors give 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return similarityWithNorms(a, b, na, nb)
}

// norm returns the L2 norm of v. Components are scaled by the largest
// magnitude first so that squaring neither overflows nor underflows.
func norm(v []float64) float64 {
	var scale float64
	for _, x := range v {
		scale = math.Max(scale, math.Abs(x))
	}
	if scale == 0 {
		return 0
	}

	var sum float64
	for _, x := range v {
		r := x / scale
		sum += r * r
	}
	return scale * math.Sqrt(sum)
}

// similarityWithNorms is the dot product of a/na and b/nb, clamped to [-1, 1]
// against rounding.
func similarityWithNorms(a, b []float64, na, nb float64) float64 {
	var dot float64
	for i := range a {
		dot += (a[i] / na) * (b[i] / nb)
	}
	return math.Max(-1, math.Min(1, dot))
}

// Query returns up to topN stored entries ranked by similarity to query,
// best first. Equal similarities keep insertion order.
//
// An empty query, an empty store, or topN <= 0 yields no matches and no error.
// A query containing NaN or Inf returns vecstore.ErrInvalidEmbedding, and
// one whose length differs from the stored embeddings returns
// vecstore.ErrDimensionMismatch.
func (e *Engine) Query(query []float64, topN int) ([]Match, error) {
	if len(query) == 0 {
		return []Match{}, nil
	}
	if !vecstore.ValidEmbedding(query) {
		return nil, fmt.Errorf("%w: query", vecstore.ErrInvalidEmbedding)
	}

	snap := e.source.Snapshot()
	if snap.Len() == 0 || topN <= 0 {
		return []Match{}, nil
	}
	if len(query) != snap.Dimension() {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d",
			vecstore.ErrDimensionMismatch, len(query), snap.Dimension())
	}
	return rank(snap, query, topN, ""), nil
}

// FindSimilar ranks stored entries against the entry with the given id.
// The entry itself is excluded from the results.
func (e *Engine) FindSimilar(id string, topN int) ([]Match, error) {
	snap := e.source.Snapshot()
	entry, ok := snap.Entry(id)
	if !ok {
		return nil, ErrEntryNotFound
	}
	if topN <= 0 {
		return []Match{}, nil
	}
	return rank(snap, entry.Embedding, topN, id), nil
}

func rank(snap *vecstore.Snapshot, query []float64, topN int, exclude string) []Match {
	qn := norm(query)

	matches := make([]Match, 0, snap.Len())
	snap.Range(func(_ int, entry vecstore.Entry) bool {
		if entry.ID == exclude {
			return true
		}
		var sim float64
		if en := norm(entry.Embedding); qn != 0 && en != 0 {
			sim = similarityWithNorms(query, entry.Embedding, qn, en)
		}
		matches = append(matches, Match{
			ID:         entry.ID,
			Content:    entry.Text,
			Metadata:   entry.Metadata,
			Similarity: sim,
			Distance:   1 - sim,
		})
		return true
	})

	// Range visits entries in insertion order, so a stable sort keeps ties in that order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}
