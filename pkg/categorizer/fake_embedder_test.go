package categorizer

import (
	"context"
	"sync/atomic"
	"time"

	"postsorter/internal/models"

	"github.com/pgvector/pgvector-go"
)

// fakeEmbedder maps texts to vectors through vectorFor and counts every call.
type fakeEmbedder struct {
	vectorFor func(text string) []float32

	loadErr   error
	loadDelay time.Duration
	embedErr  func(texts []string) error
	// modelFor names the model behind each batch; nil leaves it empty.
	modelFor func(texts []string) string

	loadCalls  atomic.Int32
	embedCalls atomic.Int32
	releases   atomic.Int32
	loaded     atomic.Bool
}

func (f *fakeEmbedder) Load(ctx context.Context) error {
	f.loadCalls.Add(1)
	if f.loadDelay > 0 {
		time.Sleep(f.loadDelay)
	}
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded.Store(true)
	return nil
}

func (f *fakeEmbedder) Ready() bool { return f.loaded.Load() }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) (*models.EmbeddingBatch, error) {
	f.embedCalls.Add(1)
	if f.embedErr != nil {
		if err := f.embedErr(texts); err != nil {
			return nil, err
		}
	}
	vectors := make([]pgvector.Vector, len(texts))
	for i, t := range texts {
		vectors[i] = pgvector.NewVector(f.vectorFor(t))
	}
	batch := models.NewEmbeddingBatch(vectors, func() { f.releases.Add(1) })
	if f.modelFor != nil {
		batch.Model = f.modelFor(texts)
	}
	return batch, nil
}

// oneHot returns a unit vector along axis i.
func oneHot(dim, i int) []float32 {
	v := make([]float32, dim)
	v[i] = 1
	return v
}

// prototypeVectors gives category i the one-hot vector e_i and passes any
// other text to post.
func prototypeVectors(post func(text string) []float32) func(string) []float32 {
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[c.Description] = i
	}
	return func(text string) []float32 {
		if i, ok := index[text]; ok {
			return oneHot(len(categories), i)
		}
		return post(text)
	}
}
