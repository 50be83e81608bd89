package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func mustPlaylist(t *testing.T, raw string) models.Playlist {
	t.Helper()
	var p models.Playlist
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("failed to decode playlist %s: %v", raw, err)
	}
	return p
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Get Missing Key", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, ok, err := NewSessionRepository(db).Get(ctx, "missing")
		if err != nil || ok {
			t.Errorf("expected absent key, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		if err := repo.Set(ctx, "k", "one"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := repo.Set(ctx, "k", "two"); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		value, ok, err := repo.Get(ctx, "k")
		if err != nil || !ok || value != "two" {
			t.Errorf("expected two, got %q ok=%v err=%v", value, ok, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		repo.Set(ctx, "k", "v")
		if err := repo.Delete(ctx, "k"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, ok, _ := repo.Get(ctx, "k"); ok {
			t.Error("expected key to be gone")
		}
		if err := repo.Delete(ctx, "k"); err != nil {
			t.Errorf("expected deleting an absent key to succeed, got %v", err)
		}
	})
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	defer db.Close()

	repo := NewTokenRepository(db)

	token, err := repo.Load(ctx)
	if err != nil || token != "" {
		t.Fatalf("expected empty token, got %q (%v)", token, err)
	}

	if err := repo.Save(ctx, "42"); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}
	if token, _ := repo.Load(ctx); token != "42" {
		t.Errorf("expected 42, got %q", token)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("failed to clear token: %v", err)
	}
	if token, _ := repo.Load(ctx); token != "" {
		t.Errorf("expected cleared token, got %q", token)
	}
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Replace And List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlists := []models.Playlist{
			mustPlaylist(t, `{"id":9,"name":"Zeta","cover":"z.png"}`),
			mustPlaylist(t, `{"id":1,"title":"Alpha"}`),
		}
		if err := repo.Replace(ctx, "42", playlists); err != nil {
			t.Fatalf("failed to replace: %v", err)
		}

		got, err := repo.List(ctx, "42")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(got))
		}
		if got[0].ID != 9 || got[1].Name != "Alpha" {
			t.Errorf("expected fetch order to be kept, got %+v", got)
		}
		if got[0].Field("cover") != "z.png" {
			t.Error("expected verbatim fields to survive the cache")
		}
	})

	t.Run("Replace Drops Stale Entries", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		repo.Replace(ctx, "42", []models.Playlist{mustPlaylist(t, `{"id":1}`), mustPlaylist(t, `{"id":2}`)})
		repo.Replace(ctx, "42", []models.Playlist{mustPlaylist(t, `{"id":3}`)})

		got, _ := repo.List(ctx, "42")
		if len(got) != 1 || got[0].ID != 3 {
			t.Errorf("expected only the latest fetch, got %+v", got)
		}
	})

	t.Run("Owners Are Isolated", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		repo.Replace(ctx, "1", []models.Playlist{mustPlaylist(t, `{"id":1}`)})
		repo.Replace(ctx, "2", []models.Playlist{mustPlaylist(t, `{"id":2}`)})

		got, _ := repo.List(ctx, "1")
		if len(got) != 1 || got[0].ID != 1 {
			t.Errorf("expected owner 1 only, got %+v", got)
		}
	})

	t.Run("Remove And Purge", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		repo.Replace(ctx, "42", []models.Playlist{mustPlaylist(t, `{"id":1}`), mustPlaylist(t, `{"id":2}`)})

		if err := repo.Remove(ctx, "42", 1); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}
		got, _ := repo.List(ctx, "42")
		if len(got) != 1 || got[0].ID != 2 {
			t.Errorf("unexpected playlists after remove %+v", got)
		}

		if err := repo.Purge(ctx, "42"); err != nil {
			t.Fatalf("failed to purge: %v", err)
		}
		got, _ = repo.List(ctx, "42")
		if len(got) != 0 {
			t.Errorf("expected empty cache, got %+v", got)
		}
	})

	t.Run("Empty Cache Lists Nothing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		got, err := NewPlaylistRepository(db).List(ctx, "42")
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %v (%v)", got, err)
		}
	})
}
