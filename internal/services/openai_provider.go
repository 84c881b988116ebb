package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"postsorter/internal/costtracker"
	"postsorter/internal/models"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"

	log "github.com/sirupsen/logrus"
)

const defaultOpenAIModel = "text-embedding-3-small"

// embeddingsCreator is the slice of *openai.Client the provider uses.
type embeddingsCreator interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIProvider embeds text with the OpenAI embeddings API.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   openai.EmbeddingModel
	dim     int

	costTracker costtracker.CostTracker
	pricing     map[string]costtracker.PricingInfo

	mu     sync.RWMutex
	client embeddingsCreator
	status ProviderStatus
}

// NewOpenAIProvider creates an OpenAI embedding provider. The client is not
// created until Initialize. An empty apiKey falls back to OPENAI_API_KEY.
func NewOpenAIProvider(apiKey, baseURL, modelID string, tracker costtracker.CostTracker, pricing map[string]costtracker.PricingInfo) *OpenAIProvider {
	if modelID == "" {
		modelID = defaultOpenAIModel
	}

	var dim int
	switch modelID {
	case string(openai.AdaEmbeddingV2), "text-embedding-3-small":
		dim = 1536
	case "text-embedding-3-large":
		dim = 3072
	default:
		log.Warnf("Unknown OpenAI embedding model '%s', defaulting dimension to 1536.", modelID)
		dim = 1536
	}

	return &OpenAIProvider{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       openai.EmbeddingModel(modelID),
		dim:         dim,
		costTracker: tracker,
		pricing:     pricing,
	}
}

func (p *OpenAIProvider) Name() string      { return "openai" }
func (p *OpenAIProvider) ModelName() string { return string(p.model) }
func (p *OpenAIProvider) Dimension() int    { return p.dim }

// Status returns the operational status of the provider.
func (p *OpenAIProvider) Status() ProviderStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Initialize creates the API client and probes the model with one embedding,
// which catches bad keys and unknown models before the first post is saved.
func (p *OpenAIProvider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	if p.client == nil {
		key := p.apiKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			p.status = ProviderStatusDisabled
			p.mu.Unlock()
			return fmt.Errorf("OpenAI provider is not configured (missing API key)")
		}
		cfg := openai.DefaultConfig(key)
		if p.baseURL != "" {
			cfg.BaseURL = p.baseURL
		}
		p.client = openai.NewClientWithConfig(cfg)
	}
	p.mu.Unlock()

	batch, err := p.GenerateEmbeddings(ctx, []string{"ping"})
	if err != nil {
		p.setStatus(ProviderStatusInactive)
		return fmt.Errorf("probe OpenAI model %s: %w", p.model, err)
	}
	batch.Release()

	p.setStatus(ProviderStatusActive)
	log.Infof("OpenAI provider initialized with model %s (dimension %d)", p.model, p.dim)
	return nil
}

func (p *OpenAIProvider) setStatus(s ProviderStatus) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// GenerateEmbeddings embeds all texts in one API request.
func (p *OpenAIProvider) GenerateEmbeddings(ctx context.Context, texts []string) (*models.EmbeddingBatch, error) {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()
	if client == nil {
		return nil, fmt.Errorf("OpenAI provider is not initialized")
	}
	if len(texts) == 0 {
		return models.NewEmbeddingBatch(nil, nil), nil
	}

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error generating embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("OpenAI API returned %d embeddings, expected %d", len(resp.Data), len(texts))
	}

	// Each vector is placed by the input position the API reports for it.
	vectors := make([]pgvector.Vector, len(texts))
	filled := make([]bool, len(texts))
	for i, data := range resp.Data {
		if len(data.Embedding) != p.dim {
			return nil, fmt.Errorf("OpenAI API returned unexpected embedding dimension: got %d, want %d at index %d", len(data.Embedding), p.dim, i)
		}
		idx := data.Index
		if idx < 0 || idx >= len(texts) {
			return nil, fmt.Errorf("OpenAI API returned embedding index %d for %d inputs", idx, len(texts))
		}
		if filled[idx] {
			return nil, fmt.Errorf("OpenAI API returned embedding index %d more than once", idx)
		}
		vectors[idx] = pgvector.NewVector(data.Embedding)
		filled[idx] = true
	}

	p.recordUsage(ctx, resp.Usage.TotalTokens, len(texts))
	batch := models.NewEmbeddingBatch(vectors, nil)
	batch.Model = models.ModelID(p.Name(), p.ModelName())
	return batch, nil
}

func (p *OpenAIProvider) recordUsage(ctx context.Context, tokens, texts int) {
	if p.costTracker == nil || tokens <= 0 {
		return
	}
	cost, ok := costtracker.Cost(p.pricing, p.ModelName(), tokens)
	if !ok {
		log.Debugf("Pricing info not found for model '%s'. Recording usage without cost.", p.model)
	}
	entry := &models.AIUsageLog{
		Timestamp:    time.Now(),
		ProviderName: p.Name(),
		ServiceType:  models.ServiceTypeEmbedding,
		ModelName:    p.ModelName(),
		InputTokens:  tokens,
		Texts:        texts,
		Cost:         cost,
	}
	if err := p.costTracker.RecordUsage(ctx, entry); err != nil {
		log.Errorf("Failed to record AI usage log for embedding: %v", err)
	}
}

var _ EmbeddingProvider = (*OpenAIProvider)(nil)
