package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/melody/internal/models"
)

// UserAPI wraps the account endpoints of the auth domain.
type UserAPI struct {
	client *Client
}

// NewUserAPI creates a [UserAPI] on top of the auth [Client].
func NewUserAPI(client *Client) *UserAPI {
	return &UserAPI{client: client}
}

// Login posts credentials to /login; the client sends them form-encoded.
//
// The payload is returned undecoded so the caller can check its shape.
func (a *UserAPI) Login(ctx context.Context, creds models.Credentials) (Result[json.RawMessage], error) {
	return Call[json.RawMessage](ctx, a.client, http.MethodPost, "/login", nil, creds)
}

// GetUser fetches the profile addressed by token (the user id).
func (a *UserAPI) GetUser(ctx context.Context, token string) (Result[*models.User], error) {
	return Call[*models.User](ctx, a.client, http.MethodGet, "/user/"+url.PathEscape(token), nil, nil)
}

// UpdateUser sends a partial user record to PUT /user.
func (a *UserAPI) UpdateUser(ctx context.Context, update models.ProfileUpdate) (Result[json.RawMessage], error) {
	return Call[json.RawMessage](ctx, a.client, http.MethodPut, "/user", nil, update)
}

// UpdatePassword sends snapshot as the body and the passwords as query parameters.
//
// The endpoint answers with a bare {status, msg} object. A nil status with a nil error means
// the body was empty. An envelope failure sentinel in the body is still reported as an error.
func (a *UserAPI) UpdatePassword(ctx context.Context, snapshot models.PasswordSnapshot, change models.PasswordChange) (*models.PasswordStatus, error) {
	query := url.Values{}
	query.Set("oldPassword", change.OldPassword)
	query.Set("newPassword", change.NewPassword)

	result, err := Call[json.RawMessage](ctx, a.client, http.MethodPut, "/user/password", query, snapshot)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(result.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var status models.PasswordStatus
	if body[0] == '{' {
		if err := json.Unmarshal(body, &status); err != nil {
			return nil, fmt.Errorf("failed to decode password response: %w", err)
		}
	}
	return &status, nil
}

// UploadAvatar posts the image as multipart form data to /user/{token}/avatar.
func (a *UserAPI) UploadAvatar(ctx context.Context, token, filename string, content io.Reader) (Result[models.AvatarUpload], error) {
	upload := &Upload{Field: "file", Filename: filename, Content: content}
	return Call[models.AvatarUpload](ctx, a.client, http.MethodPost, "/user/"+url.PathEscape(token)+"/avatar", nil, upload)
}

// DeleteUser removes the account with the given id.
func (a *UserAPI) DeleteUser(ctx context.Context, id int64) (Result[json.RawMessage], error) {
	query := url.Values{}
	query.Set("ids", strconv.FormatInt(id, 10))
	return Call[json.RawMessage](ctx, a.client, http.MethodDelete, "/user", query, nil)
}

// CreateUser registers a new account.
func (a *UserAPI) CreateUser(ctx context.Context, reg models.Registration) (Result[json.RawMessage], error) {
	return Call[json.RawMessage](ctx, a.client, http.MethodPost, "/user", nil, reg)
}
