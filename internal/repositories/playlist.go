package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/shared"
)

// PlaylistRepository caches the playlists last fetched for an account.
//
// Each playlist is stored verbatim as JSON, keyed by owner (the session token) and playlist id.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Replace swaps owner's cached playlists for playlists, preserving their order.
func (r *PlaylistRepository) Replace(ctx context.Context, owner string, playlists []models.Playlist) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_cache WHERE owner = ?", owner); err != nil {
			return fmt.Errorf("%w: failed to clear playlist cache: %v", shared.ErrStorage, err)
		}

		query := `
			INSERT INTO playlist_cache (owner, id, position, name, body, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		now := time.Now()
		for i, p := range playlists {
			body, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to encode playlist %d: %w", p.ID, err)
			}
			if _, err := tx.ExecContext(ctx, query, owner, p.ID, i, p.Name, string(body), now); err != nil {
				return fmt.Errorf("%w: failed to insert playlist %d: %v", shared.ErrStorage, p.ID, err)
			}
		}
		return nil
	})
}

// List returns owner's cached playlists in the order they were fetched.
func (r *PlaylistRepository) List(ctx context.Context, owner string) ([]models.Playlist, error) {
	query := `
		SELECT body FROM playlist_cache
		WHERE owner = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query playlist cache: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: failed to scan playlist: %v", shared.ErrStorage, err)
		}

		var p models.Playlist
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("failed to decode cached playlist: %w", err)
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating playlists: %v", shared.ErrStorage, err)
	}
	return playlists, nil
}

// Remove deletes one cached playlist. Removing an absent playlist is not an error.
func (r *PlaylistRepository) Remove(ctx context.Context, owner string, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM playlist_cache WHERE owner = ? AND id = ?", owner, id); err != nil {
		return fmt.Errorf("%w: failed to remove playlist %d: %v", shared.ErrStorage, id, err)
	}
	return nil
}

// Purge drops every cached playlist of owner.
func (r *PlaylistRepository) Purge(ctx context.Context, owner string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM playlist_cache WHERE owner = ?", owner); err != nil {
		return fmt.Errorf("%w: failed to purge playlist cache: %v", shared.ErrStorage, err)
	}
	return nil
}
