package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FailureCode is the envelope code the backend uses to signal a failed call.
const FailureCode = 0

// PasswordOK is the [PasswordStatus.Status] value reported for a successful password change.
const PasswordOK = 1

// Envelope is the response wrapper returned by the API.
//
// Code is a pointer because a missing code is not a failure.
type Envelope struct {
	Code *int            `json:"code,omitempty"`
	Msg  string          `json:"msg,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON decodes an envelope without letting one odd field discard the rest.
//
// Code is set only for a JSON number with an integral value, so 0.0 and -0 still count as the
// failure sentinel while "0", "x" or 1.5 never do. A non-string msg keeps its JSON text.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code json.RawMessage `json:"code"`
		Msg  json.RawMessage `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = Envelope{Code: envelopeCode(raw.Code), Data: raw.Data}
	if msg := bytes.TrimSpace(raw.Msg); len(msg) > 0 && !bytes.Equal(msg, []byte("null")) {
		if err := json.Unmarshal(msg, &e.Msg); err != nil {
			e.Msg = string(msg)
		}
	}
	return nil
}

func envelopeCode(raw json.RawMessage) *int {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	if strings.HasPrefix(string(bytes.TrimSpace(raw)), `"`) {
		return nil
	}

	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	code := int(f)
	return &code
}

// Failed reports whether the envelope carries the failure sentinel.
func (e Envelope) Failed() bool {
	return e.Code != nil && *e.Code == FailureCode
}

// HasData reports whether the payload is present and not JSON null.
func (e Envelope) HasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// DataMessage renders the payload as a message: strings are unquoted, other values are returned as compact JSON.
//
// Empty payloads, null, false, 0 and "" yield "", mirroring a falsy payload.
func (e Envelope) DataMessage() string {
	if !e.HasData() {
		return ""
	}

	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return s
	}

	switch d := string(bytes.TrimSpace(e.Data)); d {
	case "false", "0":
		return ""
	default:
		return d
	}
}

// User is the profile of an account.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Gender    int    `json:"gender"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
	Status    int    `json:"status"`

	// Extra holds fields the client does not model, exactly as returned.
	Extra map[string]json.RawMessage `json:"-"`
}

var userFields = []string{"id", "username", "nickname", "email", "phone", "gender", "bio", "avatarUrl", "status"}

// UnmarshalJSON decodes a user and keeps unknown fields in Extra.
//
// The id may arrive as a JSON number or a numeric string.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type plain User
	var p plain
	idRaw, hasID := raw["id"]
	delete(raw, "id")
	stripped, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(stripped, &p); err != nil {
		return err
	}

	if hasID {
		id, err := ParseID(idRaw)
		if err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		p.ID = id
	}

	for _, f := range userFields {
		delete(raw, f)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}

	*u = User(p)
	return nil
}

// MarshalJSON encodes the modeled fields together with Extra.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	known, err := json.Marshal(plain(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(u.Extra)+len(userFields))
	for k, v := range u.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// DisplayName returns the nickname, falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}

// Playlist is a saved collection owned by a user.
//
// Only the id is interpreted; Name and Description are read when present and
// Fields carries the whole object verbatim.
type Playlist struct {
	ID          int64
	Name        string
	Description string
	Fields      map[string]json.RawMessage
}

// UnmarshalJSON decodes a playlist object, keeping every field.
func (p *Playlist) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	idRaw, ok := fields["id"]
	if !ok {
		return fmt.Errorf("playlist without id")
	}
	id, err := ParseID(idRaw)
	if err != nil {
		return fmt.Errorf("playlist id: %w", err)
	}

	*p = Playlist{ID: id, Fields: fields}
	p.Name = stringField(fields, "name", "title")
	p.Description = stringField(fields, "description")
	return nil
}

// MarshalJSON returns the playlist exactly as the API described it.
func (p Playlist) MarshalJSON() ([]byte, error) {
	if p.Fields != nil {
		return json.Marshal(p.Fields)
	}
	return json.Marshal(map[string]any{"id": p.ID, "name": p.Name, "description": p.Description})
}

// Field returns a verbatim field rendered as text, or "" when absent.
func (p Playlist) Field(name string) string {
	raw, ok := p.Fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func stringField(fields map[string]json.RawMessage, names ...string) string {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// ParseID accepts a JSON number or a string holding a base-10 integer.
func ParseID(raw json.RawMessage) (int64, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("unsupported id %s", string(raw))
	}

	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", n.String())
	}
	return id, nil
}

// PasswordStatus is the raw response of the password endpoint.
//
// Code and Data are decoded too because the generic envelope check still applies to it.
type PasswordStatus struct {
	Status *int            `json:"status,omitempty"`
	Msg    string          `json:"msg,omitempty"`
	Code   *int            `json:"code,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// OK reports whether status equals [PasswordOK].
func (s PasswordStatus) OK() bool {
	return s.Status != nil && *s.Status == PasswordOK
}

// PasswordResult is the outcome of a password change, suitable for inline form feedback.
type PasswordResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Credentials are posted to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileUpdate holds the editable profile fields.
type ProfileUpdate struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Gender   int    `json:"gender"`
	Bio      string `json:"bio"`
}

// PasswordChange carries the old and new passwords.
type PasswordChange struct {
	OldPassword string
	NewPassword string
}

// PasswordSnapshot is the user record sent along with a password change.
type PasswordSnapshot struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Gender   int    `json:"gender"`
	Status   int    `json:"status"`
}

// Registration is the new-user record posted to the register endpoint.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Gender   int    `json:"gender"`
	Bio      string `json:"bio"`
	Status   int    `json:"status"`
}

// AvatarUpload is the payload returned by the avatar endpoint.
type AvatarUpload struct {
	AvatarURL string `json:"avatarUrl"`
}
