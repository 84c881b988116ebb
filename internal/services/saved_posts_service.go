package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"postsorter/internal/models"
	"postsorter/internal/store"
	"postsorter/pkg/categorizer"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SavedPostsService is the saving workflow: a saved post is categorized and
// filed under the folder of its category. Categorization never blocks a
// save; when it cannot run the post goes to the default folder.
type SavedPostsService struct {
	store       store.Store
	categorizer categorizer.ContentCategorizer
	now         func() time.Time

	mu           sync.Mutex
	categorizing map[int64]struct{}
}

func NewSavedPostsService(st store.Store, cat categorizer.ContentCategorizer) *SavedPostsService {
	return &SavedPostsService{
		store:        st,
		categorizer:  cat,
		now:          time.Now,
		categorizing: make(map[int64]struct{}),
	}
}

// EnsureCategoryFolders creates the six category folders if they are
// missing. It is safe to call more than once.
func (s *SavedPostsService) EnsureCategoryFolders(ctx context.Context) error {
	for _, c := range categorizer.Categories() {
		_, err := s.store.GetFolderByName(ctx, c.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to look up folder '%s': %w", c.Name, err)
		}
		f := &models.Folder{
			ID:          uuid.New(),
			Name:        c.Name,
			Description: c.Description,
			IsCategory:  true,
			CreatedAt:   s.now(),
		}
		if err := s.store.CreateFolder(ctx, f); err != nil && !errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("failed to create folder '%s': %w", c.Name, err)
		}
	}
	return nil
}

// SavePost categorizes and stores a post. Saving an already saved post is a
// no-op returning the stored entry. A save of the same post that is still
// categorizing fails with models.ErrConflict.
func (s *SavedPostsService) SavePost(ctx context.Context, post models.Post) (*models.SavedPost, error) {
	if post.ID <= 0 {
		return nil, fmt.Errorf("%w: post id must be positive", models.ErrValidation)
	}

	existing, err := s.store.GetSavedPost(ctx, post.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check saved post %d: %w", post.ID, err)
	}

	if !s.markCategorizing(post.ID) {
		return nil, fmt.Errorf("%w: post %d is already being saved", models.ErrConflict, post.ID)
	}
	defer s.unmarkCategorizing(post.ID)

	res := s.categorizer.Categorize(ctx, categorizer.RequestFromPost(post))
	if res.Fallback {
		log.Warnf("Post %d filed under %s: %v", post.ID, res.Category, res.FallbackReason)
	}

	sp := &models.SavedPost{
		Post:     post,
		Folder:   res.Category,
		SavedAt:  s.now(),
		Fallback: res.Fallback,
	}
	if err := s.store.CreateSavedPost(ctx, sp); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return s.store.GetSavedPost(ctx, post.ID)
		}
		return nil, fmt.Errorf("failed to store saved post %d: %w", post.ID, err)
	}
	log.Infof("Saved post %d under %s", post.ID, sp.Folder)
	return sp, nil
}

func (s *SavedPostsService) markCategorizing(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.categorizing[id]; busy {
		return false
	}
	s.categorizing[id] = struct{}{}
	return true
}

func (s *SavedPostsService) unmarkCategorizing(id int64) {
	s.mu.Lock()
	delete(s.categorizing, id)
	s.mu.Unlock()
}

// IsCategorizing reports whether a save of the post is in progress.
func (s *SavedPostsService) IsCategorizing(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.categorizing[id]
	return busy
}

// RemovePost removes a saved post from the saved list and its folder.
func (s *SavedPostsService) RemovePost(ctx context.Context, id int64) error {
	if err := s.store.DeleteSavedPost(ctx, id); err != nil {
		return mapStoreErr(err, fmt.Sprintf("post %d", id))
	}
	return nil
}

func (s *SavedPostsService) IsPostSaved(ctx context.Context, id int64) bool {
	_, err := s.store.GetSavedPost(ctx, id)
	return err == nil
}

func (s *SavedPostsService) GetSavedPost(ctx context.Context, id int64) (*models.SavedPost, error) {
	sp, err := s.store.GetSavedPost(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, fmt.Sprintf("post %d", id))
	}
	return sp, nil
}

// SavedPosts lists saved posts in save order.
func (s *SavedPostsService) SavedPosts(ctx context.Context, limit, offset int) ([]*models.SavedPost, error) {
	return s.store.ListSavedPosts(ctx, limit, offset)
}

// CategorizedPosts returns every folder with its posts. The six category
// folders come first in their fixed order, even when empty, followed by
// custom folders in creation order.
func (s *SavedPostsService) CategorizedPosts(ctx context.Context) ([]models.FolderWithPosts, error) {
	folders, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	byName := make(map[string]*models.Folder, len(folders))
	for _, f := range folders {
		byName[f.Name] = f
	}

	ordered := make([]models.Folder, 0, len(folders)+len(categorizer.Names()))
	for _, c := range categorizer.Categories() {
		if f, ok := byName[c.Name]; ok {
			ordered = append(ordered, *f)
			continue
		}
		ordered = append(ordered, models.Folder{Name: c.Name, Description: c.Description, IsCategory: true})
	}
	for _, f := range folders {
		if !categorizer.IsCategory(f.Name) {
			ordered = append(ordered, *f)
		}
	}

	out := make([]models.FolderWithPosts, len(ordered))
	for i, f := range ordered {
		saved, err := s.store.ListSavedPostsByFolder(ctx, f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to list posts in folder '%s': %w", f.Name, err)
		}
		posts := make([]models.Post, len(saved))
		for j, sp := range saved {
			posts[j] = sp.Post
		}
		out[i] = models.FolderWithPosts{Folder: f, Posts: posts}
	}
	return out, nil
}

// CreateFolder adds a custom folder. hashtags is a comma-separated list.
func (s *SavedPostsService) CreateFolder(ctx context.Context, name, description, hashtags string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name cannot be empty", models.ErrValidation)
	}
	f := &models.Folder{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Hashtags:    ParseHashtags(hashtags),
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateFolder(ctx, f); err != nil {
		return nil, mapStoreErr(err, fmt.Sprintf("folder '%s'", name))
	}
	return f, nil
}

func (s *SavedPostsService) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	return s.store.ListFolders(ctx)
}

// MovePost files a saved post under another existing folder.
func (s *SavedPostsService) MovePost(ctx context.Context, id int64, folder string) (*models.SavedPost, error) {
	f, err := s.store.GetFolderByName(ctx, folder)
	if err != nil {
		return nil, mapStoreErr(err, fmt.Sprintf("folder '%s'", folder))
	}
	if err := s.store.UpdateSavedPostFolder(ctx, id, f.Name); err != nil {
		return nil, mapStoreErr(err, fmt.Sprintf("post %d", id))
	}
	return s.store.GetSavedPost(ctx, id)
}

// ParseHashtags splits a comma-separated list, trimming entries and
// dropping empty ones.
func ParseHashtags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func mapStoreErr(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", models.ErrNotFound, what)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", models.ErrConflict, what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
