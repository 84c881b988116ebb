package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeminiProvider_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	p := NewGeminiProvider("", "")

	assert.Equal(t, defaultGeminiModel, p.ModelName())
	assert.Equal(t, 768, p.Dimension())

	err := p.Initialize(context.Background())
	assert.Error(t, err)
	assert.Equal(t, ProviderStatusDisabled, p.Status())

	_, err = p.GenerateEmbeddings(context.Background(), []string{"x"})
	assert.Error(t, err)
	assert.NoError(t, p.Close())
}
