package embedding

import (
	"context"
	"strings"
)

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	// Empty or whitespace-only text yields an empty Embedding and no error.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions, or 0 if unknown.
	Dimensions() int
}

// Func adapts a plain embedding function to the Provider interface.
type Func struct {
	Name string
	Fn   func(ctx context.Context, text string) ([]float64, error)
}

// Embed implements Provider.
func (f Func) Embed(ctx context.Context, text string) (Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return Embedding{}, nil
	}
	vec, err := f.Fn(ctx, text)
	if err != nil {
		return Embedding{}, err
	}
	return Embedding{Vector: vec}, nil
}

// ModelName implements Provider.
func (f Func) ModelName() string {
	return f.Name
}

// Dimensions implements Provider. The dimension of a Func is not known up front.
func (f Func) Dimensions() int {
	return 0
}
