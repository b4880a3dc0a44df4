package storage

import (
	"context"
	"time"
)

// Client defines the interface for publishing and retrieving run
// artifacts (CSV series, charts, HTML reports).
type Client interface {
	// Close closes the storage client
	Close() error

	// StoreFile stores an artifact inside the run folder for timestamp
	StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error

	// GetFile retrieves an artifact by its full storage path
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// ListRuns lists recent run folders, newest first
	ListRuns(ctx context.Context, limit int) ([]string, error)
}
