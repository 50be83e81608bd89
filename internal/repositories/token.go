package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/melody/internal/shared"
)

// TokenKey is the session_store key holding the session token.
const TokenKey = "token"

// SessionRepository stores string values by key in the session_store table.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the value stored under key; ok is false when the key is absent.
func (r *SessionRepository) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = r.db.QueryRowContext(ctx, "SELECT value FROM session_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to query %s: %v", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value under key.
func (r *SessionRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%w: failed to store %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM session_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// TokenRepository persists the session token in SQLite.
type TokenRepository struct {
	kv *SessionRepository
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{kv: NewSessionRepository(db)}
}

func (r *TokenRepository) Load(ctx context.Context) (string, error) {
	token, _, err := r.kv.Get(ctx, TokenKey)
	return token, err
}

func (r *TokenRepository) Save(ctx context.Context, token string) error {
	return r.kv.Set(ctx, TokenKey, token)
}

func (r *TokenRepository) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, TokenKey)
}
