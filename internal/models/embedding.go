package models

import (
	"sync"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingBatch holds the vectors produced by a single embed call.
//
// Providers may back the vectors with pooled buffers, so a batch must be
// released exactly once when the caller is done with it. Vectors must not be
// read after Release.
type EmbeddingBatch struct {
	Vectors []pgvector.Vector
	// Model identifies the provider and model that produced the vectors, as
	// "provider/model". Vectors from different models are not comparable.
	Model string

	release func()
	once    sync.Once
}

// NewEmbeddingBatch wraps vectors with an optional release hook.
func NewEmbeddingBatch(vectors []pgvector.Vector, release func()) *EmbeddingBatch {
	return &EmbeddingBatch{Vectors: vectors, release: release}
}

// ModelID formats the identity stored in EmbeddingBatch.Model.
func ModelID(provider, model string) string {
	return provider + "/" + model
}

// Len returns the number of vectors in the batch.
func (b *EmbeddingBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Vectors)
}

// At returns the i-th vector as a float32 slice.
func (b *EmbeddingBatch) At(i int) []float32 {
	return b.Vectors[i].Slice()
}

// Release returns the batch buffers to their owner. Safe to call more than
// once and on a nil batch.
func (b *EmbeddingBatch) Release() {
	if b == nil {
		return
	}
	b.once.Do(func() {
		if b.release != nil {
			b.release()
		}
		b.Vectors = nil
	})
}
