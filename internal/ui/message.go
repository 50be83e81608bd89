package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/melody/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data payload
}

// payload carries the result of a background command; only the fields relevant to the kind are set.
type payload struct {
	user      *models.User
	playlists []models.Playlist
	id        int64
	password  models.PasswordResult
	err       error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoggedIn MsgKind = iota
	MsgRegistered
	MsgUserLoaded
	MsgProfileSaved
	MsgPlaylistsFetched
	MsgPlaylistDeleted
	MsgPasswordChanged
	MsgAccountDeleted
)

// Kind reports which operation produced the message.
func (m Msg) Kind() MsgKind { return m.kind }

// Err returns the failure carried by the message, if any.
func (m Msg) Err() error { return m.data.err }

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(err error) Msg {
	return Msg{kind: MsgLoggedIn, data: payload{err: err}}
}

// registeredMsg is the constructor for [MsgRegistered]
func registeredMsg(err error) Msg {
	return Msg{kind: MsgRegistered, data: payload{err: err}}
}

// userLoadedMsg is the constructor for [MsgUserLoaded]
func userLoadedMsg(user *models.User, err error) Msg {
	return Msg{kind: MsgUserLoaded, data: payload{user: user, err: err}}
}

// profileSavedMsg is the constructor for [MsgProfileSaved]
func profileSavedMsg(user *models.User, err error) Msg {
	return Msg{kind: MsgProfileSaved, data: payload{user: user, err: err}}
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: payload{playlists: playlists, err: err}}
}

// playlistDeletedMsg is the constructor for [MsgPlaylistDeleted]
func playlistDeletedMsg(id int64, err error) Msg {
	return Msg{kind: MsgPlaylistDeleted, data: payload{id: id, err: err}}
}

// passwordChangedMsg is the constructor for [MsgPasswordChanged]
func passwordChangedMsg(result models.PasswordResult) Msg {
	return Msg{kind: MsgPasswordChanged, data: payload{password: result}}
}

// accountDeletedMsg is the constructor for [MsgAccountDeleted]
func accountDeletedMsg(err error) Msg {
	return Msg{kind: MsgAccountDeleted, data: payload{err: err}}
}
