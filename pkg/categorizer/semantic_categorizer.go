package categorizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"postsorter/internal/models"
	"postsorter/internal/textprep"
	"postsorter/internal/vecmath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// SemanticCategorizer assigns a post to the category whose prototype
// embedding is most similar to the post's embedding.
//
// The embedding model and the reference table are prepared lazily on the
// first Categorize call, or eagerly through Initialize. Preparation happens
// at most once; if it fails every later call returns DefaultCategory.
type SemanticCategorizer struct {
	embedder     Embedder
	categories   []Category
	maxSentences int

	group singleflight.Group

	mu       sync.RWMutex
	table    *ReferenceTable
	initErr  error
	initDone bool
}

// Option configures a SemanticCategorizer.
type Option func(*SemanticCategorizer)

// WithMaxSentences embeds only the first n sentences of a post. Zero or less
// embeds the whole text.
func WithMaxSentences(n int) Option {
	return func(c *SemanticCategorizer) { c.maxSentences = n }
}

// NewSemanticCategorizer creates a categorizer over the fixed category set.
func NewSemanticCategorizer(embedder Embedder, opts ...Option) *SemanticCategorizer {
	c := &SemanticCategorizer{
		embedder:   embedder,
		categories: Categories(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize loads the model and builds the reference table. Concurrent
// callers share one attempt. The returned error is the outcome of that
// attempt, or ctx.Err() if ctx ends first.
func (c *SemanticCategorizer) Initialize(ctx context.Context) error {
	_, err := c.ensureReady(ctx)
	return err
}

// Ready reports whether the reference table is built.
func (c *SemanticCategorizer) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table != nil
}

// Table returns the reference table, or nil before a successful Initialize.
func (c *SemanticCategorizer) Table() *ReferenceTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}

func (c *SemanticCategorizer) ensureReady(ctx context.Context) (*ReferenceTable, error) {
	c.mu.RLock()
	table, initErr, done := c.table, c.initErr, c.initDone
	c.mu.RUnlock()
	if done {
		return table, initErr
	}

	prepCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("init", func() (interface{}, error) {
		return c.prepare(prepCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ReferenceTable), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *SemanticCategorizer) prepare(ctx context.Context) (*ReferenceTable, error) {
	c.mu.RLock()
	if c.initDone {
		defer c.mu.RUnlock()
		return c.table, c.initErr
	}
	c.mu.RUnlock()

	table, err := c.build(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.initDone = true
	if err != nil {
		c.initErr = err
		log.Errorf("Categorization unavailable, posts will be filed under %s: %v", DefaultCategory, err)
		return nil, err
	}
	c.table = table
	log.Infof("Categorization ready: %d categories, dimension %d, model %s", table.Len(), table.Dimension(), table.Model())
	return table, nil
}

func (c *SemanticCategorizer) build(ctx context.Context) (*ReferenceTable, error) {
	if err := c.embedder.Load(ctx); err != nil {
		return nil, err
	}
	return BuildReferenceTable(ctx, c.embedder, c.categories)
}

// Categorize returns the best matching category for req. It never fails:
// an empty post, an unavailable model or an embedding error all yield
// DefaultCategory with Fallback set. A post vector from a model other than
// the one behind the reference table counts as an embedding error.
func (c *SemanticCategorizer) Categorize(ctx context.Context, req CategorizationRequest) CategorizationResult {
	text := PostText(req.Title, req.Body)
	if text == "" {
		return fallback(ErrEmptyText)
	}

	table, err := c.ensureReady(ctx)
	if err != nil {
		return fallback(err)
	}

	text = textprep.LimitSentences(text, c.maxSentences)
	batch, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		log.Warnf("Failed to embed post %d: %v", req.ID, err)
		return fallback(err)
	}
	defer batch.Release()

	if batch.Len() != 1 {
		return fallback(fmt.Errorf("%w: got %d vectors for 1 text", models.ErrEmbedding, batch.Len()))
	}
	if batch.Model != table.Model() {
		err := fmt.Errorf("%w: post embedded with %q, reference table built with %q", models.ErrEmbedding, batch.Model, table.Model())
		log.Warnf("Failed to categorize post %d: %v", req.ID, err)
		return fallback(err)
	}
	vec := batch.At(0)
	if len(vec) != table.Dimension() {
		err := fmt.Errorf("%w: post vector has dimension %d, reference table has %d", models.ErrEmbedding, len(vec), table.Dimension())
		log.Warnf("Failed to categorize post %d: %v", req.ID, err)
		return fallback(err)
	}

	result := score(table, vec)
	log.WithFields(log.Fields{
		"post":       req.ID,
		"category":   result.Category,
		"confidence": fmt.Sprintf("%.4f", result.Confidence),
		"snippet":    textprep.Snippet(text, 60),
	}).Debug("Categorized post")
	return result
}

// CategorizePost is Categorize for a post, returning just the category name.
func (c *SemanticCategorizer) CategorizePost(ctx context.Context, post models.Post) string {
	return c.Categorize(ctx, RequestFromPost(post)).Category
}

// score picks the category with the highest cosine similarity. A later
// category must score strictly higher to displace an earlier one.
func score(table *ReferenceTable, vec []float32) CategorizationResult {
	best := DefaultCategory
	bestScore := math.Inf(-1)
	scores := make([]CategoryScore, 0, table.Len())
	for _, name := range table.names {
		sim := vecmath.CosineSimilarity(vec, table.vectors[name])
		scores = append(scores, CategoryScore{Category: name, Similarity: sim})
		if sim > bestScore {
			best, bestScore = name, sim
		}
	}
	if math.IsInf(bestScore, -1) {
		bestScore = 0
	}
	return CategorizationResult{Category: best, Confidence: bestScore, Scores: scores}
}

func fallback(reason error) CategorizationResult {
	return CategorizationResult{Category: DefaultCategory, Fallback: true, FallbackReason: reason}
}

// IsFallbackBecause reports whether a fallback result was caused by target.
func (r CategorizationResult) IsFallbackBecause(target error) bool {
	return r.Fallback && errors.Is(r.FallbackReason, target)
}

var _ ContentCategorizer = (*SemanticCategorizer)(nil)
