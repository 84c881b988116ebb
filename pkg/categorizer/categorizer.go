package categorizer

import (
	"context"
	"errors"
	"strings"

	"postsorter/internal/models"
)

// ErrEmptyText marks a post with neither title nor content.
var ErrEmptyText = errors.New("post has no text to categorize")

// CategorizationRequest holds the text fields of a post.
type CategorizationRequest struct {
	ID    int64
	Title string // author title
	Body  string // post content
}

// RequestFromPost extracts the fields that take part in categorization.
func RequestFromPost(post models.Post) CategorizationRequest {
	return CategorizationRequest{ID: post.ID, Title: post.Author.Title, Body: post.Content}
}

// CategoryScore is the similarity of a post to one category prototype.
type CategoryScore struct {
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
}

// CategorizationResult holds the chosen category. Category is always one of
// the fixed category names.
type CategorizationResult struct {
	Category   string          `json:"category"`
	Confidence float64         `json:"confidence"`
	Scores     []CategoryScore `json:"scores,omitempty"`

	// Fallback is set when the category is the default because
	// categorization could not run; FallbackReason says why.
	Fallback       bool  `json:"fallback"`
	FallbackReason error `json:"-"`
}

// ContentCategorizer categorizes content. Implementations never fail: any
// problem yields the fallback category.
type ContentCategorizer interface {
	Categorize(ctx context.Context, req CategorizationRequest) CategorizationResult
}

// PostText builds the text that gets embedded: title first, then content.
func PostText(title, body string) string {
	return strings.TrimSpace(title + " " + body)
}
