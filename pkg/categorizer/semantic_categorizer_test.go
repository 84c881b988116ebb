package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"postsorter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mix(axes ...int) []float32 {
	v := make([]float32, len(categories))
	for _, a := range axes {
		v[a] = 1
	}
	return v
}

func TestCategorize_HiringPostIsCareerOpportunity(t *testing.T) {
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(text string) []float32 {
		if strings.Contains(text, "hiring") {
			return mix(0)
		}
		return mix(5)
	})}
	c := NewSemanticCategorizer(emb)

	res := c.Categorize(context.Background(), CategorizationRequest{
		ID:    1,
		Title: "Senior Software Engineer",
		Body:  "hiring interns for backend roles, apply now",
	})

	assert.Equal(t, CareerOpportunities, res.Category)
	assert.False(t, res.Fallback)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	require.Len(t, res.Scores, len(categories))
	assert.Equal(t, CareerOpportunities, res.Scores[0].Category)
}

func TestCategorize_ResultIsAlwaysKnownCategory(t *testing.T) {
	posts := []string{
		"Just shipped a new Go library for vector math",
		"Markets rallied after the merger announcement",
		"Had a great coffee this morning",
		"Never give up on your dreams",
		"短い投稿",
		"!!!",
	}
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(text string) []float32 {
		v := make([]float32, len(categories))
		for i, r := range text {
			v[i%len(v)] += float32(r % 7)
		}
		return v
	})}
	c := NewSemanticCategorizer(emb)

	for _, p := range posts {
		res := c.Categorize(context.Background(), CategorizationRequest{Body: p})
		assert.True(t, IsCategory(res.Category), "post %q got %q", p, res.Category)
	}
}

func TestCategorize_EmptyTextSkipsEmbedding(t *testing.T) {
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(string) []float32 { return mix(0) })}
	c := NewSemanticCategorizer(emb)

	for _, req := range []CategorizationRequest{{}, {Title: "  ", Body: "\n\t"}} {
		res := c.Categorize(context.Background(), req)
		assert.Equal(t, General, res.Category)
		assert.True(t, res.IsFallbackBecause(ErrEmptyText))
	}
	assert.Zero(t, emb.embedCalls.Load())
	assert.Zero(t, emb.loadCalls.Load())
}

func TestCategorize_LoadFailureIsTerminal(t *testing.T) {
	emb := &fakeEmbedder{
		vectorFor: prototypeVectors(func(string) []float32 { return mix(0) }),
		loadErr:   fmt.Errorf("%w: weights missing", models.ErrModelLoad),
	}
	c := NewSemanticCategorizer(emb)

	err := c.Initialize(context.Background())
	require.ErrorIs(t, err, models.ErrModelLoad)

	for i := 0; i < 5; i++ {
		res := c.Categorize(context.Background(), CategorizationRequest{Body: "we are hiring"})
		assert.Equal(t, General, res.Category)
		assert.True(t, res.IsFallbackBecause(models.ErrModelLoad))
	}
	assert.EqualValues(t, 1, emb.loadCalls.Load())
	assert.Zero(t, emb.embedCalls.Load())
	assert.False(t, c.Ready())
}

func TestCategorize_ReferenceBuildFailureIsTerminal(t *testing.T) {
	emb := &fakeEmbedder{
		vectorFor: prototypeVectors(func(string) []float32 { return mix(0) }),
		embedErr: func(texts []string) error {
			if len(texts) > 1 {
				return errors.New("backend down")
			}
			return nil
		},
	}
	c := NewSemanticCategorizer(emb)

	for i := 0; i < 3; i++ {
		res := c.Categorize(context.Background(), CategorizationRequest{Body: "we are hiring"})
		assert.Equal(t, General, res.Category)
		assert.True(t, res.IsFallbackBecause(models.ErrReferenceBuild))
	}
	assert.EqualValues(t, 1, emb.embedCalls.Load())
}

func TestCategorize_EmbedFailureFallsBack(t *testing.T) {
	emb := &fakeEmbedder{
		vectorFor: prototypeVectors(func(string) []float32 { return mix(0) }),
		embedErr: func(texts []string) error {
			if len(texts) == 1 {
				return fmt.Errorf("%w: timeout", models.ErrEmbedding)
			}
			return nil
		},
	}
	c := NewSemanticCategorizer(emb)

	res := c.Categorize(context.Background(), CategorizationRequest{Body: "we are hiring"})
	assert.Equal(t, General, res.Category)
	assert.True(t, res.IsFallbackBecause(models.ErrEmbedding))
	assert.True(t, c.Ready(), "a single embed failure must not disable categorization")

	// The reference batch was the only one handed out, and it was released.
	assert.EqualValues(t, 1, emb.releases.Load())
}

func TestCategorize_TieGoesToEarlierCategory(t *testing.T) {
	cases := []struct {
		name string
		vec  []float32
		want string
	}{
		{"career and tech", mix(0, 1), CareerOpportunities},
		{"tech and learning", mix(1, 2), TechResources},
		{"inspiration and general", mix(3, 5), Inspiration},
		{"all equal", mix(0, 1, 2, 3, 4, 5), CareerOpportunities},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emb := &fakeEmbedder{vectorFor: prototypeVectors(func(string) []float32 { return tc.vec })}
			c := NewSemanticCategorizer(emb)
			for i := 0; i < 10; i++ {
				res := c.Categorize(context.Background(), CategorizationRequest{Body: "tied post"})
				assert.Equal(t, tc.want, res.Category)
			}
		})
	}
}

func TestCategorize_ZeroVectorIsFirstCategory(t *testing.T) {
	// All similarities are zero, so the first category wins the tie.
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(string) []float32 { return make([]float32, len(categories)) })}
	c := NewSemanticCategorizer(emb)

	res := c.Categorize(context.Background(), CategorizationRequest{Body: "..."})
	assert.Equal(t, CareerOpportunities, res.Category)
	assert.Zero(t, res.Confidence)
	assert.False(t, res.Fallback)
}

func TestCategorize_ReferenceTableBuiltFromOneBatch(t *testing.T) {
	var mu sync.Mutex
	var batchSizes []int
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(string) []float32 { return mix(2) })}
	emb.embedErr = func(texts []string) error {
		mu.Lock()
		batchSizes = append(batchSizes, len(texts))
		mu.Unlock()
		return nil
	}
	c := NewSemanticCategorizer(emb)

	for i := 0; i < 3; i++ {
		assert.Equal(t, Learning, c.Categorize(context.Background(), CategorizationRequest{Body: "study tips"}).Category)
	}
	assert.Equal(t, []int{len(categories), 1, 1, 1}, batchSizes)
	assert.EqualValues(t, 1, emb.loadCalls.Load())
}

func TestCategorize_EveryBatchIsReleased(t *testing.T) {
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(string) []float32 { return mix(4) })}
	c := NewSemanticCategorizer(emb)

	for i := 0; i < 100; i++ {
		c.Categorize(context.Background(), CategorizationRequest{ID: int64(i), Body: "quarterly earnings"})
	}
	assert.EqualValues(t, 101, emb.embedCalls.Load())
	assert.EqualValues(t, 101, emb.releases.Load())
}

func TestCategorize_ConcurrentColdStartLoadsOnce(t *testing.T) {
	emb := &fakeEmbedder{
		vectorFor: prototypeVectors(func(string) []float32 { return mix(3) }),
		loadDelay: 20 * time.Millisecond,
	}
	c := NewSemanticCategorizer(emb)

	const workers = 16
	results := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Categorize(context.Background(), CategorizationRequest{Body: "keep going"}).Category
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, emb.loadCalls.Load())
	assert.EqualValues(t, 1+workers, emb.embedCalls.Load())
	for _, r := range results {
		assert.Equal(t, Inspiration, r)
	}
}

func TestCategorize_CancelledWaitDoesNotPoisonInit(t *testing.T) {
	emb := &fakeEmbedder{
		vectorFor: prototypeVectors(func(string) []float32 { return mix(1) }),
		loadDelay: 50 * time.Millisecond,
	}
	c := NewSemanticCategorizer(emb)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	res := c.Categorize(ctx, CategorizationRequest{Body: "rust tutorial"})
	assert.Equal(t, General, res.Category)
	assert.True(t, res.IsFallbackBecause(context.DeadlineExceeded))

	require.NoError(t, c.Initialize(context.Background()))
	assert.Equal(t, TechResources, c.Categorize(context.Background(), CategorizationRequest{Body: "rust tutorial"}).Category)
	assert.EqualValues(t, 1, emb.loadCalls.Load())
}

func TestCategorize_DimensionMismatchFallsBack(t *testing.T) {
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(string) []float32 { return []float32{1, 0, 0} })}
	c := NewSemanticCategorizer(emb)

	res := c.Categorize(context.Background(), CategorizationRequest{Body: "short vector"})
	assert.Equal(t, General, res.Category)
	assert.True(t, res.IsFallbackBecause(models.ErrEmbedding))
	assert.EqualValues(t, 2, emb.releases.Load())
}

func TestCategorize_ModelChangeAfterTableBuildFallsBack(t *testing.T) {
	model := "primary/a"
	emb := &fakeEmbedder{
		vectorFor: prototypeVectors(func(string) []float32 { return mix(0) }),
		modelFor:  func([]string) string { return model },
	}
	c := NewSemanticCategorizer(emb)
	require.NoError(t, c.Initialize(context.Background()))
	assert.Equal(t, "primary/a", c.Table().Model())

	res := c.Categorize(context.Background(), CategorizationRequest{Body: "hiring now"})
	assert.Equal(t, CareerOpportunities, res.Category)
	assert.False(t, res.Fallback)

	model = "secondary/b"
	res = c.Categorize(context.Background(), CategorizationRequest{Body: "hiring now"})
	assert.Equal(t, General, res.Category)
	assert.True(t, res.IsFallbackBecause(models.ErrEmbedding))
	assert.Zero(t, res.Confidence)
	assert.EqualValues(t, emb.embedCalls.Load(), emb.releases.Load())
}

func TestCategorize_MaxSentences(t *testing.T) {
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(text string) []float32 {
		if strings.Contains(text, "stock market") {
			return mix(4)
		}
		return mix(0)
	})}
	c := NewSemanticCategorizer(emb, WithMaxSentences(1))

	res := c.Categorize(context.Background(), CategorizationRequest{
		Body: "We are hiring backend engineers. The stock market crashed today.",
	})
	assert.Equal(t, CareerOpportunities, res.Category)
}

func TestCategorizePost_UsesAuthorTitleAndContent(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	emb := &fakeEmbedder{vectorFor: prototypeVectors(func(text string) []float32 {
		mu.Lock()
		seen = append(seen, text)
		mu.Unlock()
		return mix(2)
	})}
	c := NewSemanticCategorizer(emb)

	got := c.CategorizePost(context.Background(), models.Post{
		ID:      7,
		Content: "Five study techniques that work",
		Author:  models.Author{Name: "Ana", Title: "Teacher"},
	})
	assert.Equal(t, Learning, got)
	assert.Equal(t, []string{"Teacher Five study techniques that work"}, seen)
}
