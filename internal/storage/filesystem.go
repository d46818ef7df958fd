package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MediaStore manages the local media workspace: per-run directories for
// intermediate segment clips and the final assembled output. Intermediate
// artifacts are disposable; the final video supersedes them.
type MediaStore struct {
	basePath string
}

// NewMediaStore initializes a MediaStore rooted at basePath.
func NewMediaStore(basePath string) (*MediaStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if !filepath.IsAbs(basePath) {
		if abs, err := filepath.Abs(basePath); err == nil {
			basePath = abs
		}
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &MediaStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *MediaStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// NewRunDir creates a fresh uniquely named directory for one pipeline run
// and returns its absolute path. Filenames below it are collision-free by
// construction.
func (s *MediaStore) NewRunDir() (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	dir := filepath.Join(s.basePath, "runs", uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure run directory: %w", err)
	}
	return dir, nil
}

// FinalPath returns a unique destination for an assembled video.
func (s *MediaStore) FinalPath() string {
	return filepath.Join(s.basePath, fmt.Sprintf("final_%s.mp4", uuid.NewString()))
}

// Write persists the provided bytes at the given relative key and returns
// the absolute path written. Keys are cleaned to prevent directory traversal.
func (s *MediaStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return fullPath, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
