package memory

import (
	"context"
	"testing"

	"postsorter/internal/models"
	"postsorter/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saved(id int64, folder string) *models.SavedPost {
	return &models.SavedPost{Post: models.Post{ID: id, Content: "post"}, Folder: folder}
}

func TestSavedPosts(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, s.CreateSavedPost(ctx, saved(id, "General")))
	}
	err := s.CreateSavedPost(ctx, saved(1, "Learning"))
	assert.ErrorIs(t, err, store.ErrDuplicate)

	all, err := s.ListSavedPosts(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{all[0].Post.ID, all[1].Post.ID, all[2].Post.ID}, "save order")

	page, err := s.ListSavedPosts(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.EqualValues(t, 1, page[0].Post.ID)

	page, err = s.ListSavedPosts(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)

	require.NoError(t, s.UpdateSavedPostFolder(ctx, 1, "Learning"))
	got, err := s.GetSavedPost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Learning", got.Folder)

	inGeneral, err := s.ListSavedPostsByFolder(ctx, "General")
	require.NoError(t, err)
	assert.Len(t, inGeneral, 2)

	require.NoError(t, s.DeleteSavedPost(ctx, 1))
	assert.ErrorIs(t, s.DeleteSavedPost(ctx, 1), store.ErrNotFound)
	_, err = s.GetSavedPost(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateSavedPostFolder(ctx, 1, "General"), store.ErrNotFound)

	n, err := s.CountSavedPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSavedPosts_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	sp := saved(1, "General")
	sp.Post.Reactions = []string{"like"}
	require.NoError(t, s.CreateSavedPost(ctx, sp))

	sp.Folder = "mutated"
	sp.Post.Reactions[0] = "mutated"

	got, err := s.GetSavedPost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "General", got.Folder)
	assert.Equal(t, []string{"like"}, got.Post.Reactions)
}

func TestFolders(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateFolder(ctx, &models.Folder{ID: uuid.New(), Name: "Rust"}))
	require.NoError(t, s.CreateFolder(ctx, &models.Folder{ID: uuid.New(), Name: "Design", Hashtags: []string{"#ux"}}))
	assert.ErrorIs(t, s.CreateFolder(ctx, &models.Folder{ID: uuid.New(), Name: " rust "}), store.ErrDuplicate)

	f, err := s.GetFolderByName(ctx, "DESIGN")
	require.NoError(t, err)
	assert.Equal(t, "Design", f.Name)
	assert.Equal(t, []string{"#ux"}, f.Hashtags)

	_, err = s.GetFolderByName(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := s.ListFolders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Rust", list[0].Name)
	assert.NoError(t, s.Ping(ctx))
}
