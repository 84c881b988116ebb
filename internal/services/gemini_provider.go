package services

import (
	"context"
	"fmt"
	"os"
	"sync"

	"postsorter/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "models/text-embedding-004"

// GeminiProvider embeds text with the Google Gemini embedding API.
type GeminiProvider struct {
	apiKey         string
	embeddingModel string
	dim            int

	mu     sync.RWMutex
	client *genai.Client
	em     *genai.EmbeddingModel
	status ProviderStatus
}

// NewGeminiProvider creates a Gemini embedding provider. An empty apiKey
// falls back to GEMINI_API_KEY at Initialize time.
func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	var dim int
	switch modelName {
	case "models/embedding-001", "models/text-embedding-004":
		dim = 768
	default:
		log.Warnf("Unknown Gemini embedding model '%s', defaulting dimension to 768.", modelName)
		dim = 768
	}

	return &GeminiProvider{
		apiKey:         apiKey,
		embeddingModel: modelName,
		dim:            dim,
	}
}

func (p *GeminiProvider) Name() string      { return "gemini" }
func (p *GeminiProvider) ModelName() string { return p.embeddingModel }
func (p *GeminiProvider) Dimension() int    { return p.dim }

func (p *GeminiProvider) Status() ProviderStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Initialize creates the Gemini client.
func (p *GeminiProvider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return nil
	}
	key := p.apiKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		p.status = ProviderStatusDisabled
		return fmt.Errorf("Gemini provider is not configured (missing API key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		p.status = ProviderStatusInactive
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	p.em = client.EmbeddingModel(p.embeddingModel)
	p.status = ProviderStatusActive
	log.Infof("Gemini provider initialized with model %s (dimension %d)", p.embeddingModel, p.dim)
	return nil
}

// GenerateEmbeddings embeds all texts with a single BatchEmbedContents call.
func (p *GeminiProvider) GenerateEmbeddings(ctx context.Context, texts []string) (*models.EmbeddingBatch, error) {
	p.mu.RLock()
	em := p.em
	p.mu.RUnlock()
	if em == nil {
		return nil, fmt.Errorf("Gemini provider is not initialized")
	}
	if len(texts) == 0 {
		return models.NewEmbeddingBatch(nil, nil), nil
	}

	b := em.NewBatch()
	for _, text := range texts {
		b.AddContent(genai.Text(text))
	}
	res, err := em.BatchEmbedContents(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error generating embeddings: %w", err)
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		got := 0
		if res != nil {
			got = len(res.Embeddings)
		}
		return nil, fmt.Errorf("Gemini API returned %d embeddings, expected %d", got, len(texts))
	}

	vectors := make([]pgvector.Vector, len(texts))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) != p.dim {
			return nil, fmt.Errorf("Gemini API returned an unexpected embedding at index %d", i)
		}
		vectors[i] = pgvector.NewVector(e.Values)
	}
	batch := models.NewEmbeddingBatch(vectors, nil)
	batch.Model = models.ModelID(p.Name(), p.ModelName())
	return batch, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		err := p.client.Close()
		p.client = nil
		p.em = nil
		return err
	}
	return nil
}

var _ EmbeddingProvider = (*GeminiProvider)(nil)
