package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"postsorter/internal/models"

	"github.com/pgvector/pgvector-go"
)

// countingProvider is an in-memory EmbeddingProvider that returns a constant
// vector, or vectorFor(text) when set, and records how it was used.
type countingProvider struct {
	name      string
	dim       int
	initErr   error
	initDelay time.Duration
	vectorFor func(text string) []float32

	// genErrs is consumed one per GenerateEmbeddings call; nil entries succeed.
	mu      sync.Mutex
	genErrs []error
	short   bool

	initCalls atomic.Int32
	genCalls  atomic.Int32
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	releases  atomic.Int32
	status    atomic.Int32
}

func newCountingProvider(name string, dim int) *countingProvider {
	return &countingProvider{name: name, dim: dim}
}

func (p *countingProvider) Name() string      { return p.name }
func (p *countingProvider) ModelName() string { return p.name + "-model" }
func (p *countingProvider) Dimension() int    { return p.dim }
func (p *countingProvider) Status() ProviderStatus {
	return ProviderStatus(p.status.Load())
}

func (p *countingProvider) Initialize(ctx context.Context) error {
	p.initCalls.Add(1)
	if p.initDelay > 0 {
		time.Sleep(p.initDelay)
	}
	if p.initErr != nil {
		p.status.Store(int32(ProviderStatusInactive))
		return p.initErr
	}
	p.status.Store(int32(ProviderStatusActive))
	return nil
}

func (p *countingProvider) GenerateEmbeddings(ctx context.Context, texts []string) (*models.EmbeddingBatch, error) {
	p.genCalls.Add(1)
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		m := p.maxFlight.Load()
		if n <= m || p.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)

	p.mu.Lock()
	var err error
	if len(p.genErrs) > 0 {
		err, p.genErrs = p.genErrs[0], p.genErrs[1:]
	}
	short := p.short
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	count := len(texts)
	if short && count > 0 {
		count--
	}
	vectors := make([]pgvector.Vector, count)
	for i := range vectors {
		if p.vectorFor != nil {
			vectors[i] = pgvector.NewVector(p.vectorFor(texts[i]))
			continue
		}
		v := make([]float32, p.dim)
		v[0] = 1
		vectors[i] = pgvector.NewVector(v)
	}
	return models.NewEmbeddingBatch(vectors, func() { p.releases.Add(1) }), nil
}

func (p *countingProvider) failNext(errs ...error) {
	p.mu.Lock()
	p.genErrs = append(p.genErrs, errs...)
	p.mu.Unlock()
}

var errBackend = errors.New("backend unavailable")

var _ EmbeddingProvider = (*countingProvider)(nil)
