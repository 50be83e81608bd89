package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tu "github.com/desertthunder/melody/internal/testing"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Load Missing File", func(t *testing.T) {
		fs := NewFileStore(filepath.Join(t.TempDir(), "token"))
		token, err := fs.Load(ctx)
		if err != nil || token != "" {
			t.Errorf("expected empty token, got %q (%v)", token, err)
		}
	})

	t.Run("Save Load Clear", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "token")
		fs := NewFileStore(path)

		if err := fs.Save(ctx, "42"); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		tu.AssertDirExists(t, filepath.Dir(path))
		tu.AssertFileExists(t, path)

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat token file: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}

		token, err := fs.Load(ctx)
		if err != nil || token != "42" {
			t.Errorf("expected 42, got %q (%v)", token, err)
		}

		if err := fs.Clear(ctx); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected token file to be removed")
		}
		if err := fs.Clear(ctx); err != nil {
			t.Errorf("expected clearing twice to succeed, got %v", err)
		}
	})

	t.Run("Trims Whitespace", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		if err := os.WriteFile(path, []byte("42\n"), 0600); err != nil {
			t.Fatal(err)
		}
		token, _ := NewFileStore(path).Load(ctx)
		if token != "42" {
			t.Errorf("expected trimmed token, got %q", token)
		}
	})

	t.Run("Store Round Trip", func(t *testing.T) {
		fs := NewFileStore(filepath.Join(t.TempDir(), "token"))
		if err := fs.Save(ctx, "7"); err != nil {
			t.Fatal(err)
		}

		store := New(Options{Persister: fs})
		if err := store.Init(ctx); err != nil {
			t.Fatalf("failed to init: %v", err)
		}
		if store.Token() != "7" {
			t.Errorf("expected token from file, got %q", store.Token())
		}

		store.Logout(ctx)
		if token, _ := fs.Load(ctx); token != "" {
			t.Errorf("expected file to be cleared, got %q", token)
		}
	})
}
