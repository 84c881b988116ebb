package costtracker

import (
	"context"
	"sync"

	"postsorter/internal/models"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

// Summary aggregates recorded usage.
type Summary struct {
	Calls       int                `json:"calls"`
	Texts       int                `json:"texts"`
	InputTokens int64              `json:"input_tokens"`
	TotalCost   float64            `json:"total_cost_usd"`
	ByModel     map[string]float64 `json:"cost_by_model"`
}

// CostTracker records embedding API usage and reports totals.
type CostTracker interface {
	RecordUsage(ctx context.Context, entry *models.AIUsageLog) error
	ListUsage(ctx context.Context, limit, offset int) ([]*models.AIUsageLog, error)
	Summary(ctx context.Context) (Summary, error)
}

// Cost prices a call from its token count. Unknown models cost nothing.
func Cost(pricing map[string]PricingInfo, model string, inputTokens int) (float64, bool) {
	price, ok := pricing[model]
	if !ok {
		return 0, false
	}
	return float64(inputTokens) * price.InputPerToken, true
}

// New returns an in-memory tracker. Usage lives only as long as the process.
func New() *MemoryTracker {
	return &MemoryTracker{}
}

// MemoryTracker keeps usage logs in insertion order.
type MemoryTracker struct {
	mu   sync.RWMutex
	logs []*models.AIUsageLog
}

func (m *MemoryTracker) RecordUsage(ctx context.Context, entry *models.AIUsageLog) error {
	if entry == nil {
		return nil
	}
	cp := *entry
	m.mu.Lock()
	m.logs = append(m.logs, &cp)
	m.mu.Unlock()
	return nil
}

// ListUsage returns logs newest first.
func (m *MemoryTracker) ListUsage(ctx context.Context, limit, offset int) ([]*models.AIUsageLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	out := make([]*models.AIUsageLog, 0, limit)
	for i := len(m.logs) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		cp := *m.logs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryTracker) Summary(ctx context.Context) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Summary{ByModel: make(map[string]float64)}
	for _, l := range m.logs {
		s.Calls++
		s.Texts += l.Texts
		s.InputTokens += int64(l.InputTokens)
		s.TotalCost += l.Cost
		s.ByModel[l.ProviderName+"/"+l.ModelName] += l.Cost
	}
	return s, nil
}

var _ CostTracker = (*MemoryTracker)(nil)
