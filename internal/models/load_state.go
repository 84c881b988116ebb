package models

// LoadState tracks the lifecycle of an embedding model handle.
type LoadState int

const (
	LoadStateNotStarted LoadState = iota
	LoadStateLoading
	LoadStateReady
	// LoadStateFailed is terminal. The handle never reloads and callers run in
	// degraded mode.
	LoadStateFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadStateNotStarted:
		return "not_started"
	case LoadStateLoading:
		return "loading"
	case LoadStateReady:
		return "ready"
	case LoadStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Service type constants used in usage logs.
const (
	ServiceTypeEmbedding      = "embedding"
	ServiceTypeCategorization = "categorization"
)
