// Package fileingest reads feed posts from JSON files.
package fileingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"postsorter/internal/models"
)

// ReadPosts reads posts from path. A file holds either a JSON array of posts
// or a single post object. A directory is walked for *.json files, read in
// lexical path order.
func ReadPosts(ctx context.Context, path string) ([]models.Post, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return readPostsFile(path)
	}

	files, err := DiscoverJSONFiles(ctx, path)
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := readPostsFile(f)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p...)
	}
	return posts, nil
}

func readPostsFile(path string) ([]models.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var posts []models.Post
		if err := json.Unmarshal(data, &posts); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return posts, nil
	}
	var post models.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []models.Post{post}, nil
}

/*
DiscoverJSONFiles recursively finds all .json files under rootDir.

Paths are returned sorted.
*/
func DiscoverJSONFiles(ctx context.Context, rootDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
