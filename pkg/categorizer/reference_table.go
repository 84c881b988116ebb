package categorizer

import (
	"context"
	"fmt"

	"postsorter/internal/models"
)

// Embedder produces embeddings once loaded. *services.ModelHandle
// satisfies it.
type Embedder interface {
	Load(ctx context.Context) error
	Ready() bool
	Embed(ctx context.Context, texts []string) (*models.EmbeddingBatch, error)
}

// ReferenceTable maps each category to its prototype vector. It is immutable
// once built and safe for concurrent reads.
type ReferenceTable struct {
	names   []string
	vectors map[string][]float32
	dim     int
	model   string
}

// BuildReferenceTable embeds every category description in one batch. The
// vectors are copied out so the batch can be released before returning.
func BuildReferenceTable(ctx context.Context, embedder Embedder, cats []Category) (*ReferenceTable, error) {
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: no categories", models.ErrReferenceBuild)
	}

	texts := make([]string, len(cats))
	for i, c := range cats {
		texts[i] = c.Description
	}

	batch, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrReferenceBuild, err)
	}
	defer batch.Release()

	if batch.Len() != len(cats) {
		return nil, fmt.Errorf("%w: got %d vectors for %d categories", models.ErrReferenceBuild, batch.Len(), len(cats))
	}

	t := &ReferenceTable{
		names:   make([]string, 0, len(cats)),
		vectors: make(map[string][]float32, len(cats)),
		model:   batch.Model,
	}
	for i, c := range cats {
		src := batch.At(i)
		if i == 0 {
			t.dim = len(src)
		}
		if len(src) == 0 || len(src) != t.dim {
			return nil, fmt.Errorf("%w: category %q has dimension %d, want %d", models.ErrReferenceBuild, c.Name, len(src), t.dim)
		}
		if _, dup := t.vectors[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", models.ErrReferenceBuild, c.Name)
		}
		vec := make([]float32, len(src))
		copy(vec, src)
		t.names = append(t.names, c.Name)
		t.vectors[c.Name] = vec
	}
	return t, nil
}

// Get returns the prototype vector of a category.
func (t *ReferenceTable) Get(name string) ([]float32, bool) {
	v, ok := t.vectors[name]
	return v, ok
}

// Dimension is the length of every vector in the table.
func (t *ReferenceTable) Dimension() int { return t.dim }

// Model identifies the embedding model the prototypes came from. Only
// vectors from the same model can be scored against the table.
func (t *ReferenceTable) Model() string { return t.model }

// Len is the number of categories.
func (t *ReferenceTable) Len() int { return len(t.names) }

// Names returns the category names in build order.
func (t *ReferenceTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
