package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yndnr/sipkv/internal/storage/codec"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

// FileStore keeps a table as a single codec dump file.
type FileStore struct {
	path   string
	format codec.Format
}

// NewFileStore returns a store for the dump at path.
func NewFileStore(path string, format codec.Format) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store: path is required")
	}
	if _, err := codec.ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &FileStore{path: path, format: format}, nil
}

// Path returns the dump location.
func (s *FileStore) Path() string { return s.path }

// Load adds the dump's entries to t. A missing file loads nothing.
func (s *FileStore) Load(t *hashtable.Table) (codec.Stats, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return codec.Stats{}, nil
		}
		return codec.Stats{}, fmt.Errorf("file store: open: %w", err)
	}
	defer f.Close()

	st, err := codec.Decode(f, t, s.format)
	if err != nil {
		return st, fmt.Errorf("file store: decode %s: %w", s.path, err)
	}
	return st, nil
}

// Save writes every entry of t, replacing the previous dump only once the
// new one is complete.
func (s *FileStore) Save(t *hashtable.Table) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("file store: create dir: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store: create temp file: %w", err)
	}
	tempPath := f.Name()
	defer os.Remove(tempPath)

	if err := codec.Encode(f, t, s.format); err != nil {
		f.Close()
		return fmt.Errorf("file store: encode: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("file store: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("file store: close: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}
