// Package memory is a process-lifetime Store. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"postsorter/internal/models"
	"postsorter/internal/store"
)

type savedEntry struct {
	seq  uint64
	post models.SavedPost
}

// StoreImpl keeps saved posts and folders in maps guarded by one lock.
// Returned values are copies.
type StoreImpl struct {
	mu      sync.RWMutex
	seq     uint64
	saved   map[int64]*savedEntry
	folders []models.Folder
	byName  map[string]int
}

// New creates an empty store.
func New() *StoreImpl {
	return &StoreImpl{
		saved:  make(map[int64]*savedEntry),
		byName: make(map[string]int),
	}
}

func folderKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func copySaved(sp models.SavedPost) *models.SavedPost {
	out := sp
	if sp.Post.Reactions != nil {
		out.Post.Reactions = append([]string(nil), sp.Post.Reactions...)
	}
	return &out
}

func copyFolder(f models.Folder) *models.Folder {
	out := f
	if f.Hashtags != nil {
		out.Hashtags = append([]string(nil), f.Hashtags...)
	}
	return &out
}

// --- Saved posts ---

func (s *StoreImpl) CreateSavedPost(ctx context.Context, sp *models.SavedPost) error {
	if sp == nil {
		return fmt.Errorf("saved post is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.saved[sp.Post.ID]; exists {
		return fmt.Errorf("post %d: %w", sp.Post.ID, store.ErrDuplicate)
	}
	s.seq++
	s.saved[sp.Post.ID] = &savedEntry{seq: s.seq, post: *copySaved(*sp)}
	return nil
}

func (s *StoreImpl) GetSavedPost(ctx context.Context, postID int64) (*models.SavedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.saved[postID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copySaved(e.post), nil
}

func (s *StoreImpl) DeleteSavedPost(ctx context.Context, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.saved[postID]; !ok {
		return store.ErrNotFound
	}
	delete(s.saved, postID)
	return nil
}

func (s *StoreImpl) UpdateSavedPostFolder(ctx context.Context, postID int64, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.saved[postID]
	if !ok {
		return store.ErrNotFound
	}
	e.post.Folder = folder
	return nil
}

// ordered returns entries by save order. Callers hold at least the read lock.
func (s *StoreImpl) ordered(keep func(*savedEntry) bool) []*savedEntry {
	entries := make([]*savedEntry, 0, len(s.saved))
	for _, e := range s.saved {
		if keep == nil || keep(e) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return entries
}

func (s *StoreImpl) ListSavedPosts(ctx context.Context, limit, offset int) ([]*models.SavedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.ordered(nil)
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []*models.SavedPost{}, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	out := make([]*models.SavedPost, len(entries))
	for i, e := range entries {
		out[i] = copySaved(e.post)
	}
	return out, nil
}

func (s *StoreImpl) ListSavedPostsByFolder(ctx context.Context, folder string) ([]*models.SavedPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.ordered(func(e *savedEntry) bool { return e.post.Folder == folder })
	out := make([]*models.SavedPost, len(entries))
	for i, e := range entries {
		out[i] = copySaved(e.post)
	}
	return out, nil
}

func (s *StoreImpl) CountSavedPosts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.saved), nil
}

// --- Folders ---

func (s *StoreImpl) CreateFolder(ctx context.Context, folder *models.Folder) error {
	if folder == nil {
		return fmt.Errorf("folder is nil")
	}
	key := folderKey(folder.Name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[key]; exists {
		return fmt.Errorf("folder with name '%s' already exists: %w", folder.Name, store.ErrDuplicate)
	}
	s.byName[key] = len(s.folders)
	s.folders = append(s.folders, *copyFolder(*folder))
	return nil
}

func (s *StoreImpl) GetFolderByName(ctx context.Context, name string) (*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byName[folderKey(name)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyFolder(s.folders[i]), nil
}

func (s *StoreImpl) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Folder, len(s.folders))
	for i, f := range s.folders {
		out[i] = copyFolder(f)
	}
	return out, nil
}

func (s *StoreImpl) Ping(ctx context.Context) error { return nil }

var _ store.Store = (*StoreImpl)(nil)
