package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/services"
	"github.com/desertthunder/melody/internal/shared"
)

// Options configures a [Store].
type Options struct {
	Users         services.UserService
	Persister     Persister
	Logger        *log.Logger
	DefaultAvatar string
}

// Store is the session context: the current token and user profile.
//
// Network calls are made without holding the lock; concurrent calls of the same operation are not
// coalesced and whichever resolves last determines the state.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *models.User

	users         services.UserService
	persist       Persister
	logger        *log.Logger
	defaultAvatar string
}

// New creates an empty, unauthenticated [Store]. Call [Store.Init] to load a persisted token.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.DefaultAvatar == "" {
		opts.DefaultAvatar = DefaultAvatar
	}
	return &Store{
		users:         opts.Users,
		persist:       opts.Persister,
		logger:        opts.Logger,
		defaultAvatar: opts.DefaultAvatar,
	}
}

// Init reads the persisted token. A storage failure leaves the session logged out.
func (s *Store) Init(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	token, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load session token", "error", err)
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = nil
	s.mu.Unlock()

	if token != "" {
		s.logger.Debug("restored session token")
	}
	return nil
}

// Token returns the current token, or "" when logged out. It satisfies [services.TokenProvider].
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// User returns a copy of the cached profile, or nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login authenticates with the trimmed username and password.
//
// The login payload must be an object with an id; the id becomes the token and the payload the
// cached user. The token is persisted before the call returns.
func (s *Store) Login(ctx context.Context, username, password string) error {
	err := s.login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		s.logger.Error("login failed", "error", err)
		return flatten("login", MsgLoginFailed, err)
	}
	return nil
}

func (s *Store) login(ctx context.Context, username, password string) error {
	result, err := s.users.Login(ctx, models.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	if result.Failed() {
		return rejected("login", MsgLoginFailed, result.Envelope, result.Status)
	}

	payload := bytes.TrimSpace(result.Envelope.Data)
	if len(payload) == 0 || payload[0] != '{' {
		return &Error{Op: "login", Msg: MsgLoginBadPayload, Err: shared.ErrInvalidResponse}
	}

	token, err := tokenFromPayload(payload)
	if err != nil {
		return &Error{Op: "login", Msg: MsgLoginInvalidID, Err: err}
	}

	var user models.User
	if err := json.Unmarshal(payload, &user); err != nil {
		return &Error{Op: "login", Msg: MsgLoginBadPayload, Err: fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)}
	}

	if s.persist != nil {
		if err := s.persist.Save(ctx, token); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.logger.Info("logged in", "user", username, "id", token)
	return nil
}

func tokenFromPayload(payload []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
	}

	raw, ok := fields["id"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", fmt.Errorf("%w: payload has no id", shared.ErrAuthFailed)
	}
	id, err := models.ParseID(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return strconv.FormatInt(id, 10), nil
}

// UserInfo fetches the profile of the signed-in user and caches it.
//
// A missing avatar is replaced by the default avatar path. When the server answers 401 the session
// is logged out before the error is returned.
func (s *Store) UserInfo(ctx context.Context) (*models.User, error) {
	user, err := s.userInfo(ctx)
	if err != nil {
		s.logger.Error("failed to fetch user info", "error", err)
		if services.IsUnauthorized(err) {
			s.Logout(ctx)
		}
		return nil, flatten("user_info", MsgUserInfoFailed, err)
	}
	return user, nil
}

func (s *Store) userInfo(ctx context.Context) (*models.User, error) {
	token := s.Token()
	if token == "" {
		return nil, notLoggedIn("user_info")
	}

	result, err := s.users.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, rejected("user_info", MsgUserInfoFailed, result.Envelope, result.Status)
	}
	if result.Data == nil {
		msg := result.Envelope.Msg
		if msg == "" {
			msg = MsgUserInfoFailed
		}
		return nil, &Error{Op: "user_info", Msg: msg, Err: shared.ErrInvalidResponse}
	}

	user := *result.Data
	if user.AvatarURL == "" {
		user.AvatarURL = s.defaultAvatar
	}

	s.mu.Lock()
	if s.token == token {
		s.user = &user
	}
	s.mu.Unlock()

	out := user
	return &out, nil
}

// Restore is the startup profile fetch: it returns nil instead of failing.
//
// An invalid token (HTTP 401) clears the session.
func (s *Store) Restore(ctx context.Context) *models.User {
	if !s.IsAuthenticated() {
		return nil
	}
	user, err := s.UserInfo(ctx)
	if err != nil {
		s.logger.Warn("could not restore profile", "error", err)
		return nil
	}
	return user
}

// UpdateProfile sends the editable fields and returns the profile as re-fetched from the server.
func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	user, err := s.updateProfile(ctx, update)
	if err != nil {
		s.logger.Error("failed to update profile", "error", err)
		return nil, flatten("update_profile", MsgUpdateFailed, err)
	}
	return user, nil
}

func (s *Store) updateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	id, err := s.numericToken("update_profile")
	if err != nil {
		return nil, err
	}
	update.ID = id

	result, err := s.users.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	if result.Failed() {
		return nil, rejected("update_profile", MsgUpdateFailed, result.Envelope, result.Status)
	}
	return s.UserInfo(ctx)
}

// UploadAvatar posts a new avatar image and refreshes the cached profile.
func (s *Store) UploadAvatar(ctx context.Context, filename string, content io.Reader) error {
	if err := s.uploadAvatar(ctx, filename, content); err != nil {
		s.logger.Error("failed to upload avatar", "error", err)
		return flatten("upload_avatar", MsgAvatarFailed, err)
	}
	return nil
}

func (s *Store) uploadAvatar(ctx context.Context, filename string, content io.Reader) error {
	token := s.Token()
	if token == "" {
		return notLoggedIn("upload_avatar")
	}

	result, err := s.users.UploadAvatar(ctx, token, filename, content)
	if err != nil {
		return err
	}
	if result.Failed() {
		return rejected("upload_avatar", MsgAvatarFailed, result.Envelope, result.Status)
	}

	_, err = s.UserInfo(ctx)
	return err
}

// Logout forgets the session in memory and in storage. It never calls the API and never fails.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.persist == nil {
		return
	}
	if err := s.persist.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session token", "error", err)
	}
}

// UpdatePassword changes the password and reports the outcome without raising.
//
// Success is decided by the endpoint's own status field (1 = success), not by the envelope code.
func (s *Store) UpdatePassword(ctx context.Context, change models.PasswordChange) models.PasswordResult {
	s.mu.RLock()
	token, user := s.token, s.user
	s.mu.RUnlock()

	if user == nil || token == "" {
		return models.PasswordResult{Message: MsgNoUserInfo}
	}

	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		s.logger.Error("failed to change password", "error", err)
		return models.PasswordResult{Message: MsgNoUserInfo}
	}

	snapshot := models.PasswordSnapshot{
		ID:       id,
		Username: user.Username,
		Nickname: user.Nickname,
		Email:    user.Email,
		Phone:    user.Phone,
		Gender:   user.Gender,
		Status:   user.Status,
	}

	status, err := s.users.UpdatePassword(ctx, snapshot, change)
	if err != nil {
		s.logger.Error("failed to change password", "error", err)
		return models.PasswordResult{Message: flatten("update_password", MsgPasswordFailed, err).Msg}
	}
	if status == nil {
		return models.PasswordResult{Message: MsgBadServerResponse}
	}

	result := models.PasswordResult{Success: status.OK(), Message: status.Msg}
	if result.Message == "" {
		if result.Success {
			result.Message = MsgPasswordChanged
		} else {
			result.Message = MsgPasswordRejected
		}
	}
	return result
}

// Register creates a new account. It does not sign the new user in.
//
// Nickname defaults to the username and status is always 1.
func (s *Store) Register(ctx context.Context, reg models.Registration) error {
	if reg.Nickname == "" {
		reg.Nickname = reg.Username
	}
	reg.Status = 1

	result, err := s.users.CreateUser(ctx, reg)
	if err == nil && result.Failed() {
		err = rejected("register", MsgRegisterFailed, result.Envelope, result.Status)
	}
	if err != nil {
		s.logger.Error("registration failed", "error", err)
		return flatten("register", MsgRegisterFailed, err)
	}

	s.logger.Info("registered account", "user", reg.Username)
	return nil
}

// DeleteAccount removes the signed-in account and logs out.
func (s *Store) DeleteAccount(ctx context.Context) error {
	if err := s.deleteAccount(ctx); err != nil {
		s.logger.Error("failed to delete account", "error", err)
		return flatten("delete_account", MsgDeleteFailed, err)
	}
	return nil
}

func (s *Store) deleteAccount(ctx context.Context) error {
	id, err := s.numericToken("delete_account")
	if err != nil {
		return err
	}

	result, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if result.Failed() {
		return rejected("delete_account", MsgDeleteFailed, result.Envelope, result.Status)
	}

	s.Logout(ctx)
	return nil
}

func (s *Store) numericToken(op string) (int64, error) {
	token := s.Token()
	if token == "" {
		return 0, notLoggedIn(op)
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, &Error{Op: op, Msg: MsgNotLoggedIn, Err: errors.Join(shared.ErrNotAuthenticated, err)}
	}
	return id, nil
}

// ParseGender reads the leading integer of s, as form input is parsed; anything else is 0.
func ParseGender(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
