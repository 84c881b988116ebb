package store

import (
	"context"

	"postsorter/internal/models"
)

// --- Saved Post Store ---

type SavedPostStore interface {
	// CreateSavedPost fails with ErrDuplicate if the post is already saved.
	CreateSavedPost(ctx context.Context, sp *models.SavedPost) error
	GetSavedPost(ctx context.Context, postID int64) (*models.SavedPost, error)
	DeleteSavedPost(ctx context.Context, postID int64) error
	UpdateSavedPostFolder(ctx context.Context, postID int64, folder string) error
	// ListSavedPosts returns posts in save order, oldest first.
	ListSavedPosts(ctx context.Context, limit, offset int) ([]*models.SavedPost, error)
	ListSavedPostsByFolder(ctx context.Context, folder string) ([]*models.SavedPost, error)
	CountSavedPosts(ctx context.Context) (int, error)
}

// --- Folder Store ---

type FolderStore interface {
	// CreateFolder fails with ErrDuplicate if a folder with the same name
	// (case-insensitive) exists.
	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolderByName(ctx context.Context, name string) (*models.Folder, error)
	// ListFolders returns folders in creation order.
	ListFolders(ctx context.Context) ([]*models.Folder, error)
}

// Store is everything the saving workflow persists.
type Store interface {
	SavedPostStore
	FolderStore

	Ping(ctx context.Context) error
}
