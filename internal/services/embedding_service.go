package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postsorter/internal/models"

	log "github.com/sirupsen/logrus"
)

// NewFallbackEmbeddingService creates a provider chain. Providers are tried in
// the given order.
func NewFallbackEmbeddingService(providers []EmbeddingProvider, strategy RetryStrategy) (*FallbackEmbeddingService, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one embedding provider is required")
	}
	if strategy == nil {
		strategy = &SimpleRetryStrategy{MaxAttempts: 3, BaseDelayMs: 100}
	}
	return &FallbackEmbeddingService{
		Providers:      providers,
		ActiveProvider: 0,
		RetryStrategy:  strategy,
	}, nil
}

// Initialize initializes every provider and keeps the ones that came up.
// The survivors must agree on the embedding dimension.
func (s *FallbackEmbeddingService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ready []EmbeddingProvider
	var errs []error
	for _, p := range s.Providers {
		if err := p.Initialize(ctx); err != nil {
			log.Warnf("Embedding provider %s failed to initialize: %v", p.Name(), err)
			errs = append(errs, fmt.Errorf("provider %s: %w", p.Name(), err))
			continue
		}
		ready = append(ready, p)
	}
	if len(ready) == 0 {
		s.status = ProviderStatusInactive
		return fmt.Errorf("no embedding provider initialized: %w", errors.Join(errs...))
	}

	dim := ready[0].Dimension()
	for _, p := range ready[1:] {
		if p.Dimension() != dim {
			s.status = ProviderStatusInactive
			return fmt.Errorf("all embedding providers must have the same dimension (provider %s has %d, expected %d)",
				p.Name(), p.Dimension(), dim)
		}
	}

	s.Providers = ready
	s.ActiveProvider = 0
	s.status = ProviderStatusActive
	log.Infof("Embedding chain ready with %d provider(s), active: %s (%s)", len(ready), ready[0].Name(), ready[0].ModelName())
	return nil
}

// Dimension returns the dimension of the currently active provider.
func (s *FallbackEmbeddingService) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 {
		return 0
	}
	return s.Providers[s.ActiveProvider].Dimension()
}

// GenerateEmbeddings tries the active provider with retries, then moves down
// the chain until one succeeds or every provider has failed.
func (s *FallbackEmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string) (*models.EmbeddingBatch, error) {
	s.mu.RLock()
	initialProviderIndex := s.ActiveProvider
	numProviders := len(s.Providers)
	s.mu.RUnlock()
	if numProviders == 0 {
		return nil, fmt.Errorf("no embedding providers configured")
	}

	var lastErr error
	attempt := 0

	for {
		s.mu.RLock()
		provider := s.Providers[s.ActiveProvider]
		s.mu.RUnlock()

		log.Debugf("Attempt %d: embedding %d text(s) with provider %s (%s)", attempt+1, len(texts), provider.Name(), provider.ModelName())
		batch, err := provider.GenerateEmbeddings(ctx, texts)

		if ctx.Err() != nil {
			batch.Release()
			return nil, fmt.Errorf("context cancelled during embedding generation: %w", ctx.Err())
		}

		if err == nil {
			if batch.Len() == len(texts) {
				if batch.Model == "" {
					batch.Model = models.ModelID(provider.Name(), provider.ModelName())
				}
				return batch, nil
			}
			batch.Release()
			err = fmt.Errorf("returned %d vectors for %d texts", batch.Len(), len(texts))
		}

		lastErr = fmt.Errorf("provider %s failed: %w", provider.Name(), err)
		log.Warnf("Embedding provider %s failed: %v", provider.Name(), err)

		backoffMs := s.RetryStrategy.NextBackoff(attempt)
		if backoffMs < 0 {
			s.mu.Lock()
			nextProviderIndex := (s.ActiveProvider + 1) % numProviders
			if nextProviderIndex == initialProviderIndex {
				s.mu.Unlock()
				return nil, fmt.Errorf("all embedding providers failed: last error: %w", lastErr)
			}
			s.ActiveProvider = nextProviderIndex
			log.Infof("Switching active embedding provider to %s", s.Providers[nextProviderIndex].Name())
			s.mu.Unlock()

			attempt = 0
			continue
		}

		select {
		case <-time.After(time.Duration(backoffMs) * time.Millisecond):
			attempt++
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled while waiting to retry: %w", ctx.Err())
		}
	}
}
