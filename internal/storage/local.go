package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalFileStorage implements the Storage interface for the local filesystem
type LocalFileStorage struct{}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage() *LocalFileStorage {
	return &LocalFileStorage{}
}

// EnsureDir creates dir and its parents if they do not exist
func (s *LocalFileStorage) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// Stat returns the size of a regular file and whether it exists
func (s *LocalFileStorage) Stat(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

// GetReader returns a reader for the specified file
func (s *LocalFileStorage) GetReader(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// CreateAtomic creates a temporary file next to path. Data written to it only
// replaces path when Commit is called.
func (s *LocalFileStorage) CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := s.EnsureDir(dir); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".part-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	return &AtomicFile{file: tmp, dst: path}, nil
}

// WriteFileAtomic writes data to path through a temporary file
func (s *LocalFileStorage) WriteFileAtomic(path string, data []byte) error {
	f, err := s.CreateAtomic(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Abort()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Commit()
}

// ListFiles lists files in a directory matching a prefix pattern
func (s *LocalFileStorage) ListFiles(dir string, pattern string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var results []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		// Temp files of unfinished transfers are never listed
		if strings.HasPrefix(file.Name(), ".") {
			continue
		}

		if pattern != "" && !strings.HasPrefix(file.Name(), pattern) {
			continue
		}

		results = append(results, filepath.Join(dir, file.Name()))
	}

	return results, nil
}

// AtomicFile is a pending file created by CreateAtomic.
type AtomicFile struct {
	file *os.File
	dst  string
	done bool
}

func (f *AtomicFile) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

// Path returns the final destination of the file.
func (f *AtomicFile) Path() string {
	return f.dst
}

// Commit flushes the temporary file and renames it over the destination.
func (f *AtomicFile) Commit() error {
	if f.done {
		return errors.New("atomic file already finished")
	}
	f.done = true

	tmpName := f.file.Name()
	if err := f.file.Sync(); err != nil {
		f.file.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := f.file.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", f.dst, err)
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (f *AtomicFile) Abort() {
	if f.done {
		return
	}
	f.done = true
	tmpName := f.file.Name()
	f.file.Close()
	os.Remove(tmpName)
}
