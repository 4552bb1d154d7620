package godss

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore implements ObjectStore on a local directory. Keys map directly to
// file names under the root.
type FSStore struct {
	root string
}

// NewFSStore creates a store rooted at dir, creating the directory if
// needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FSStore{root: dir}, nil
}

func (s *FSStore) Read(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, key))
}

func (s *FSStore) Write(ctx context.Context, key string, data []byte) error {
	return os.WriteFile(filepath.Join(s.root, key), data, 0o644)
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(s.root, key))
}

func (s *FSStore) List(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			keys = append(keys, entry.Name())
		}
	}
	return keys, nil
}

func (s *FSStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.root, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *FSStore) Close() error {
	return nil
}
