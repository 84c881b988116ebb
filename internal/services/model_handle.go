package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"postsorter/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ModelHandle owns the load lifecycle of one embedding provider:
// construct -> Load -> ready (or failed). Loading is single-flight: callers
// arriving while a load is running wait for it instead of starting another.
// A failed load is final.
type ModelHandle struct {
	provider  EmbeddingProvider
	serialize bool

	group   singleflight.Group
	embedMu sync.Mutex

	mu      sync.RWMutex
	state   models.LoadState
	loadErr error
}

// NewModelHandle wraps a provider. With serialize set, Embed calls never run
// concurrently, for backends that are not safe for parallel use.
func NewModelHandle(provider EmbeddingProvider, serialize bool) *ModelHandle {
	return &ModelHandle{provider: provider, serialize: serialize}
}

// Provider returns the wrapped provider.
func (h *ModelHandle) Provider() EmbeddingProvider { return h.provider }

// State returns the current load state.
func (h *ModelHandle) State() models.LoadState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Ready reports whether Embed may be called.
func (h *ModelHandle) Ready() bool {
	return h.State() == models.LoadStateReady
}

// Err returns the load error of a failed handle.
func (h *ModelHandle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadErr
}

// Load initializes the provider once. It returns immediately when the handle
// is already ready or failed. ctx bounds only the wait: if it ends first Load
// returns ctx.Err() and the load keeps running to completion.
func (h *ModelHandle) Load(ctx context.Context) error {
	h.mu.RLock()
	state, loadErr := h.state, h.loadErr
	h.mu.RUnlock()
	switch state {
	case models.LoadStateReady:
		return nil
	case models.LoadStateFailed:
		return loadErr
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := h.group.DoChan("load", func() (interface{}, error) {
		return nil, h.load(loadCtx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *ModelHandle) load(ctx context.Context) error {
	h.mu.Lock()
	// A previous flight may have finished between the caller's state check
	// and joining the group.
	if h.state == models.LoadStateReady || h.state == models.LoadStateFailed {
		err := h.loadErr
		h.mu.Unlock()
		return err
	}
	h.state = models.LoadStateLoading
	h.mu.Unlock()

	log.Infof("Loading embedding model %s (%s)...", h.provider.Name(), h.provider.ModelName())
	start := time.Now()
	err := h.provider.Initialize(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.state = models.LoadStateFailed
		h.loadErr = fmt.Errorf("%w: provider %s: %w", models.ErrModelLoad, h.provider.Name(), err)
		log.Errorf("Embedding model failed to load after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return h.loadErr
	}
	h.state = models.LoadStateReady
	log.Infof("Embedding model loaded in %s (dimension %d)", time.Since(start).Round(time.Millisecond), h.provider.Dimension())
	return nil
}

// Dimension returns the vector dimension of the wrapped provider.
func (h *ModelHandle) Dimension() int {
	return h.provider.Dimension()
}

// Embed returns one vector per text, in order, with batch.Model naming the
// model that produced them. It fails with models.ErrModelNotReady unless Load
// has succeeded. On error no batch is
// returned and any partial result has been released.
func (h *ModelHandle) Embed(ctx context.Context, texts []string) (*models.EmbeddingBatch, error) {
	if state := h.State(); state != models.LoadStateReady {
		return nil, fmt.Errorf("%w: model state is %s", models.ErrModelNotReady, state)
	}

	if h.serialize {
		h.embedMu.Lock()
		defer h.embedMu.Unlock()
	}

	batch, err := h.provider.GenerateEmbeddings(ctx, texts)
	if err != nil {
		batch.Release()
		return nil, fmt.Errorf("%w: %w", models.ErrEmbedding, err)
	}
	if batch.Len() != len(texts) {
		n := batch.Len()
		batch.Release()
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", models.ErrEmbedding, n, len(texts))
	}
	if batch.Model == "" {
		batch.Model = models.ModelID(h.provider.Name(), h.provider.ModelName())
	}
	return batch, nil
}
