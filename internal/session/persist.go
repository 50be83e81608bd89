package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/melody/internal/shared"
)

// Persister mirrors the session token into durable storage.
//
// Load returns "" when nothing is stored.
type Persister interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// FileStore persists the token as the sole content of a file.
type FileStore struct {
	path string
}

// NewFileStore creates a [FileStore] at path; "~" is expanded.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: shared.ExpandHome(path)}
}

// Path returns the token file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to read token file: %v", shared.ErrStorage, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *FileStore) Save(ctx context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("%w: failed to create token directory: %v", shared.ErrStorage, err)
	}
	if err := os.WriteFile(f.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("%w: failed to write token file: %v", shared.ErrStorage, err)
	}
	return nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove token file: %v", shared.ErrStorage, err)
	}
	return nil
}
