package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LocalClient stores run artifacts on the local filesystem.
type LocalClient struct {
	baseDir string
}

// NewLocalClient creates a local storage client rooted at baseDir.
func NewLocalClient(baseDir string) (*LocalClient, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}
	return &LocalClient{baseDir: baseDir}, nil
}

// Close is a no-op for local storage (implements the same interface as
// the GCS client).
func (l *LocalClient) Close() error {
	return nil
}

// StoreFile writes an artifact into the run folder for timestamp.
func (l *LocalClient) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error {
	filePath := filepath.Join(l.baseDir, RunFolderPath(timestamp), filename)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(filePath), err)
	}
	if err := os.WriteFile(filePath, fileData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	return nil
}

// GetFile reads an artifact relative to the storage root.
func (l *LocalClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	full := filepath.Join(l.baseDir, filePath)

	// The path may come straight from a URL; keep it inside the root.
	absBase, err := filepath.Abs(l.baseDir)
	if err != nil {
		return nil, err
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(absFull, absBase+string(os.PathSeparator)) {
		return nil, fmt.Errorf("path %s escapes storage root", filePath)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", full, err)
	}
	return data, nil
}

// ListRuns walks the storage root and returns run folders, newest first.
func (l *LocalClient) ListRuns(ctx context.Context, limit int) ([]string, error) {
	var runs []string

	err := filepath.Walk(l.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries and continue
		}
		if info.IsDir() && strings.HasPrefix(info.Name(), "ZontemRun-") {
			rel, relErr := filepath.Rel(l.baseDir, path)
			if relErr != nil {
				return nil
			}
			runs = append(runs, rel)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk storage root: %w", err)
	}

	// Folder names embed the timestamp, so lexical order is
	// chronological.
	sort.Sort(sort.Reverse(sort.StringSlice(runs)))
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
