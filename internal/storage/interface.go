package storage

import (
	"context"
	"io"
)

// Storage defines the local file operations the collection sync relies on:
// ROM files, the local index copy and the exported catalogs.
type Storage interface {
	EnsureDir(dir string) error

	// Stat reports the size of the file at path and whether it exists.
	Stat(path string) (int64, bool)

	GetReader(path string) (io.ReadCloser, error)

	// CreateAtomic returns a file that only appears at path once committed.
	CreateAtomic(path string) (*AtomicFile, error)

	WriteFileAtomic(path string, data []byte) error

	ListFiles(dir string, pattern string) ([]string, error)
}

// Publisher copies finished local files to a remote location.
type Publisher interface {
	// Publish uploads localPath as objectName and returns where it ended up.
	Publish(ctx context.Context, localPath, objectName string) (string, error)
	Close() error
}
