// Package library keeps the signed-in user's playlist collection in sync with the API.
package library

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/services"
	"github.com/desertthunder/melody/internal/shared"
)

// Cache stores the last fetched collection per owner for offline listing.
//
// Implemented by repositories.PlaylistRepository.
type Cache interface {
	Replace(ctx context.Context, owner string, playlists []models.Playlist) error
	List(ctx context.Context, owner string) ([]models.Playlist, error)
	Remove(ctx context.Context, owner string, id int64) error
	Purge(ctx context.Context, owner string) error
}

// Library is the local playlist collection.
//
// The collection changes only by a successful fetch (replaced wholesale) or a successful delete
// (one entry removed).
type Library struct {
	mu        sync.RWMutex
	playlists []models.Playlist

	api    services.PlaylistService
	tokens services.TokenProvider
	cache  Cache
	logger *log.Logger
}

// New creates an empty [Library]. cache may be nil.
func New(api services.PlaylistService, tokens services.TokenProvider, cache Cache, logger *log.Logger) *Library {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Library{api: api, tokens: tokens, cache: cache, logger: logger}
}

// Fetch replaces the local collection with the server's.
//
// On failure the collection is left unchanged and the error is returned.
func (l *Library) Fetch(ctx context.Context) ([]models.Playlist, error) {
	result, err := l.api.List(ctx)
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		l.logger.Error("failed to fetch playlists", "error", err)
		return nil, err
	}

	playlists := result.Data
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	l.mu.Lock()
	l.playlists = playlists
	l.mu.Unlock()

	if owner := l.owner(); l.cache != nil && owner != "" {
		if err := l.cache.Replace(ctx, owner, playlists); err != nil {
			l.logger.Warn("failed to cache playlists", "error", err)
		}
	}
	return slices.Clone(playlists), nil
}

// Delete removes the playlist remotely and, once the server accepts, locally.
func (l *Library) Delete(ctx context.Context, id int64) error {
	result, err := l.api.Delete(ctx, id)
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		l.logger.Error("failed to delete playlist", "id", id, "error", err)
		return err
	}

	l.mu.Lock()
	l.playlists = slices.DeleteFunc(l.playlists, func(p models.Playlist) bool { return p.ID == id })
	l.mu.Unlock()

	if owner := l.owner(); l.cache != nil && owner != "" {
		if err := l.cache.Remove(ctx, owner, id); err != nil {
			l.logger.Warn("failed to update playlist cache", "error", err)
		}
	}
	return nil
}

// Playlists returns a snapshot of the local collection.
func (l *Library) Playlists() []models.Playlist {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.playlists)
}

// Find returns the playlist with id from the local collection.
func (l *Library) Find(id int64) (models.Playlist, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := slices.IndexFunc(l.playlists, func(p models.Playlist) bool { return p.ID == id })
	if i < 0 {
		return models.Playlist{}, false
	}
	return l.playlists[i], true
}

// Cached loads the collection from the offline cache without calling the API.
func (l *Library) Cached(ctx context.Context) ([]models.Playlist, error) {
	owner := l.owner()
	if owner == "" {
		return nil, shared.ErrNotAuthenticated
	}
	if l.cache == nil {
		return []models.Playlist{}, nil
	}

	playlists, err := l.cache.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.playlists = playlists
	l.mu.Unlock()
	return slices.Clone(playlists), nil
}

// Forget empties the local collection and drops the signed-in owner's cached copy.
//
// Call it before the session is cleared; afterwards there is no owner to purge.
func (l *Library) Forget(ctx context.Context) error {
	return l.ForgetOwner(ctx, l.owner())
}

// ForgetOwner is [Library.Forget] for a session that has already ended, e.g. after the account was deleted.
func (l *Library) ForgetOwner(ctx context.Context, owner string) error {
	l.mu.Lock()
	l.playlists = nil
	l.mu.Unlock()

	if l.cache == nil || owner == "" {
		return nil
	}
	return l.cache.Purge(ctx, owner)
}

func (l *Library) owner() string {
	if l.tokens == nil {
		return ""
	}
	return l.tokens.Token()
}
