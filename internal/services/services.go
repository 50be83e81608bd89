// package services defines the API domains the client talks to
//
// Users (auth domain), Playlists (resource domain)
package services

import (
	"context"
	"encoding/json"
	"io"

	"github.com/desertthunder/melody/internal/models"
)

// UserService is the account surface of the auth domain.
//
// Implemented by [UserAPI]; the session store depends on this interface so tests can substitute a fake.
type UserService interface {
	// Login exchanges credentials for the user's id, carried in the payload.
	Login(ctx context.Context, creds models.Credentials) (Result[json.RawMessage], error)

	// GetUser fetches the profile belonging to token.
	GetUser(ctx context.Context, token string) (Result[*models.User], error)

	// UpdateUser applies a partial profile update.
	UpdateUser(ctx context.Context, update models.ProfileUpdate) (Result[json.RawMessage], error)

	// UpdatePassword changes the password. A nil status means the server sent no body.
	UpdatePassword(ctx context.Context, snapshot models.PasswordSnapshot, change models.PasswordChange) (*models.PasswordStatus, error)

	// UploadAvatar stores a new avatar image for the user addressed by token.
	UploadAvatar(ctx context.Context, token, filename string, content io.Reader) (Result[models.AvatarUpload], error)

	// DeleteUser removes the account.
	DeleteUser(ctx context.Context, id int64) (Result[json.RawMessage], error)

	// CreateUser registers a new account.
	CreateUser(ctx context.Context, reg models.Registration) (Result[json.RawMessage], error)
}

// PlaylistService is the playlist surface of the resource domain.
type PlaylistService interface {
	List(ctx context.Context) (Result[[]models.Playlist], error)
	Delete(ctx context.Context, id int64) (Result[json.RawMessage], error)
}

var (
	_ UserService     = (*UserAPI)(nil)
	_ PlaylistService = (*PlaylistAPI)(nil)
)
