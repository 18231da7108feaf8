package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore is a BlobStore backed by a directory tree. Keys map onto
// relative paths under the root. Writes go through a temp file and an
// atomic rename so a crash mid-write never leaves a torn payload behind.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns the store.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("file store: root directory not set")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create root: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("file store: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes data under key, overwriting any previous payload.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	_ = ctx // local filesystem writes are not cancellable

	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file store: mkdir for %q: %w", key, err)
	}

	// Temp file in the destination directory so the rename stays on one
	// filesystem and remains atomic.
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("file store: create temp for %q: %w", key, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("file store: write %q: %w", key, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("file store: sync %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("file store: close %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("file store: rename %q: %w", key, err)
	}
	return nil
}

// Get reads the payload at key; ok is false when the key does not exist.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx

	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("file store: read %q: %w", key, err)
	}
	return data, true, nil
}
