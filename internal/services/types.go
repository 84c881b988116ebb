package services

import (
	"context"
	"sync"

	"postsorter/internal/models"
)

// ProviderStatus reports whether an embedding backend can serve requests.
type ProviderStatus int

const (
	ProviderStatusUnknown  ProviderStatus = iota // Not initialized yet
	ProviderStatusActive                         // Initialized and operational
	ProviderStatusInactive                       // Initialization or last call failed
	ProviderStatusDisabled                       // Not configured (e.g. missing API key)
)

func (s ProviderStatus) String() string {
	switch s {
	case ProviderStatusActive:
		return "active"
	case ProviderStatusInactive:
		return "inactive"
	case ProviderStatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// EmbeddingProvider is a text embedding backend. Initialize fetches or sets
// up the model and must succeed before GenerateEmbeddings is called; the
// ModelHandle enforces that ordering.
type EmbeddingProvider interface {
	Name() string
	ModelName() string
	Status() ProviderStatus
	Initialize(ctx context.Context) error
	// GenerateEmbeddings returns one vector per input text, in input order.
	// The caller owns the returned batch and must Release it.
	GenerateEmbeddings(ctx context.Context, texts []string) (*models.EmbeddingBatch, error)
	Dimension() int
}

type RetryStrategy interface {
	NextBackoff(attempt int) int64 // ms
}

// FallbackEmbeddingService chains providers, retrying the active one and
// switching to the next when retries are exhausted.
type FallbackEmbeddingService struct {
	Providers      []EmbeddingProvider
	ActiveProvider int
	RetryStrategy  RetryStrategy

	status ProviderStatus
	mu     sync.RWMutex
}

// ModelName returns the model name of the currently active provider.
func (s *FallbackEmbeddingService) ModelName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.Providers) == 0 || s.ActiveProvider < 0 || s.ActiveProvider >= len(s.Providers) {
		return ""
	}
	return s.Providers[s.ActiveProvider].ModelName()
}

// Name returns the name of the currently active provider.
func (s *FallbackEmbeddingService) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.Providers) == 0 || s.ActiveProvider < 0 || s.ActiveProvider >= len(s.Providers) {
		return ""
	}
	return s.Providers[s.ActiveProvider].Name()
}

// Status returns the status of the chain as a whole.
func (s *FallbackEmbeddingService) Status() ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 {
		return ProviderStatusDisabled
	}
	return s.status
}

var _ EmbeddingProvider = (*FallbackEmbeddingService)(nil)

// SimpleRetryStrategy provides basic exponential backoff.
type SimpleRetryStrategy struct {
	MaxAttempts int
	BaseDelayMs int64
}

// NextBackoff calculates the next backoff duration in milliseconds, or -1
// when no further retry should happen.
func (s *SimpleRetryStrategy) NextBackoff(attempt int) int64 {
	if s.MaxAttempts <= 0 {
		return -1
	}
	if attempt >= s.MaxAttempts {
		return -1
	}
	backoff := s.BaseDelayMs * (1 << attempt)
	maxDelay := int64(30000)
	if backoff > maxDelay {
		backoff = maxDelay
	}
	return backoff
}
