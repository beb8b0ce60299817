package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

// FileStore keeps one file per slot under a state directory. Writes go
// through a temp file and rename so a crash never leaves a half-written
// slot.
type FileStore struct {
	dir    string
	logger logger.Logger
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string, log logger.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: log}, nil
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", key, err)
	}
	return data, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return fmt.Errorf("file store: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("file store: commit %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file store: delete %s: %w", key, err)
	}
	return nil
}

// path maps a slot key to a file name. Path separators and dots are
// flattened so a key can never escape the state directory.
func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}
