package models

import (
	"time"

	"github.com/google/uuid"
)

// AIUsageLog represents a record of embedding API usage for cost tracking.
type AIUsageLog struct {
	Timestamp    time.Time `json:"timestamp"`
	ProviderName string    `json:"provider_name"`
	ServiceType  string    `json:"service_type"` // e.g., "embedding"
	ModelName    string    `json:"model_name"`
	InputTokens  int       `json:"input_tokens"`
	Texts        int       `json:"texts"`
	Cost         float64   `json:"cost"`
}

// Author is the person a feed post is attributed to.
type Author struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Avatar string `json:"avatar,omitempty"`
}

// Post mirrors the feed post shape sent by the web client. Only Content and
// Author.Title take part in categorization; the rest is display metadata.
type Post struct {
	ID        int64    `json:"id"`
	Content   string   `json:"content"`
	Author    Author   `json:"author"`
	TimeAgo   string   `json:"timeAgo,omitempty"`
	Image     string   `json:"image,omitempty"`
	Likes     int      `json:"likes"`
	Comments  int      `json:"comments"`
	Reposts   int      `json:"reposts"`
	Reactions []string `json:"reactions,omitempty"`
}

// SavedPost is a post in the saved list together with the folder it was
// filed under.
type SavedPost struct {
	Post     Post      `json:"post"`
	Folder   string    `json:"folder"`
	SavedAt  time.Time `json:"saved_at"`
	Fallback bool      `json:"fallback"` // true when categorization could not run
}

// Folder groups saved posts. The six category folders always exist; custom
// folders are created by the user.
type Folder struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Hashtags    []string  `json:"hashtags,omitempty"`
	IsCategory  bool      `json:"is_category"`
	CreatedAt   time.Time `json:"created_at"`
}

// FolderWithPosts is a folder and the saved posts filed in it, in save order.
type FolderWithPosts struct {
	Folder Folder `json:"folder"`
	Posts  []Post `json:"posts"`
}
