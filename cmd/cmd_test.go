package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"postsorter/internal/models"
	"postsorter/pkg/categorizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "postsorter dev\n", out.String())
}

func TestCategoriesCommand(t *testing.T) {
	var out bytes.Buffer
	categoriesCmd.SetOut(&out)
	require.NoError(t, categoriesCmd.RunE(categoriesCmd, nil))
	for _, name := range categorizer.Names() {
		assert.Contains(t, strings.ToLower(out.String()), strings.ToLower(name))
	}
}

func TestGetAppFromContext_Missing(t *testing.T) {
	_, err := GetAppFromContext(context.Background())
	assert.Error(t, err)
}

func TestPrintCategorization(t *testing.T) {
	var out bytes.Buffer
	printCategorization(&out, categorizer.CategorizationResult{
		Category:   categorizer.Learning,
		Confidence: 0.42,
		Scores: []categorizer.CategoryScore{
			{Category: categorizer.CareerOpportunities, Similarity: 0.1},
			{Category: categorizer.Learning, Similarity: 0.42},
		},
	})
	assert.Contains(t, out.String(), "0.4200")
	assert.Contains(t, out.String(), "Category:")

	out.Reset()
	printCategorization(&out, categorizer.CategorizationResult{
		Category:       categorizer.General,
		Fallback:       true,
		FallbackReason: errors.Join(models.ErrModelLoad),
	})
	assert.Contains(t, out.String(), "Fallback:")
	assert.Contains(t, out.String(), categorizer.General)
}
