package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"postsorter/internal/models"
	"postsorter/internal/vecmath"

	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
)

const defaultLocalDimension = 512

// Weight of a bigram feature relative to a unigram.
const bigramWeight = 0.5

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {},
	"on": {}, "or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {},
	"this": {}, "we": {}, "you": {}, "your": {}, "our": {}, "e": {}, "g": {}, "etc": {},
}

// LocalProvider is an offline feature-hashing embedder. Words and word pairs
// are hashed into a fixed number of signed buckets and the result is
// L2-normalized, so texts sharing vocabulary land close in cosine space.
//
// Vector buffers are pooled; a batch returns them to the pool on Release.
type LocalProvider struct {
	dim  int
	pool sync.Pool

	outstanding atomic.Int64

	mu     sync.RWMutex
	status ProviderStatus
}

// NewLocalProvider creates a local embedder producing dim-sized vectors.
func NewLocalProvider(dim int) *LocalProvider {
	if dim <= 0 {
		dim = defaultLocalDimension
	}
	p := &LocalProvider{dim: dim}
	p.pool.New = func() any {
		buf := make([]float32, p.dim)
		return &buf
	}
	return p
}

func (p *LocalProvider) Name() string      { return "local" }
func (p *LocalProvider) ModelName() string { return fmt.Sprintf("hashing-%d", p.dim) }
func (p *LocalProvider) Dimension() int    { return p.dim }

func (p *LocalProvider) Status() ProviderStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Initialize has nothing to fetch; it only validates the configuration.
func (p *LocalProvider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dim < 2 {
		p.status = ProviderStatusInactive
		return fmt.Errorf("local embedder dimension must be at least 2, got %d", p.dim)
	}
	p.status = ProviderStatusActive
	log.Infof("Local embedding provider ready (dimension %d)", p.dim)
	return nil
}

// Outstanding reports how many pooled buffers are held by unreleased batches.
func (p *LocalProvider) Outstanding() int64 {
	return p.outstanding.Load()
}

// GenerateEmbeddings embeds each text independently. Empty texts map to the
// zero vector.
func (p *LocalProvider) GenerateEmbeddings(ctx context.Context, texts []string) (*models.EmbeddingBatch, error) {
	if p.Status() != ProviderStatusActive {
		return nil, fmt.Errorf("local provider is not initialized")
	}

	bufs := make([]*[]float32, len(texts))
	vectors := make([]pgvector.Vector, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			p.putBuffers(bufs[:i])
			return nil, err
		}
		buf := p.pool.Get().(*[]float32)
		p.outstanding.Add(1)
		p.embedInto(*buf, text)
		bufs[i] = buf
		vectors[i] = pgvector.NewVector(*buf)
	}

	batch := models.NewEmbeddingBatch(vectors, func() { p.putBuffers(bufs) })
	batch.Model = models.ModelID(p.Name(), p.ModelName())
	return batch, nil
}

func (p *LocalProvider) putBuffers(bufs []*[]float32) {
	for _, b := range bufs {
		if b == nil {
			continue
		}
		p.pool.Put(b)
		p.outstanding.Add(-1)
	}
}

func (p *LocalProvider) embedInto(vec []float32, text string) {
	for i := range vec {
		vec[i] = 0
	}
	words := tokenize(text)
	prev := ""
	for _, w := range words {
		p.addFeature(vec, w, 1)
		if prev != "" {
			p.addFeature(vec, prev+" "+w, bigramWeight)
		}
		prev = w
	}
	vecmath.Normalize(vec)
}

func (p *LocalProvider) addFeature(vec []float32, feature string, weight float32) {
	h := fnv.New32a()
	h.Write([]byte(feature))
	sum := h.Sum32()
	idx := int(sum % uint32(p.dim))
	if sum&(1<<31) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// tokenize splits text into lowercase words, dropping stop words and a
// trailing plural "s" so "jobs" and "job" share a bucket.
func tokenize(text string) []string {
	var words []string
	var word strings.Builder

	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		word.Reset()
		if _, stop := stopWords[w]; stop {
			return
		}
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			w = w[:len(w)-1]
		}
		words = append(words, w)
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

var _ EmbeddingProvider = (*LocalProvider)(nil)
