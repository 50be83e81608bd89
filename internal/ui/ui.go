package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/router"
	"github.com/desertthunder/melody/internal/services"
	"github.com/desertthunder/melody/internal/shared"
)

// Screen is the view bound to a route path.
type Screen int

const (
	LoginScreen Screen = iota
	RegisterScreen
	HomeScreen
	ProfileScreen
	SettingsScreen
)

var screens = map[string]Screen{
	router.PathLogin:    LoginScreen,
	router.PathRegister: RegisterScreen,
	router.PathHome:     HomeScreen,
	router.PathProfile:  ProfileScreen,
	router.PathSettings: SettingsScreen,
}

// Session is the part of the session store the TUI drives.
type Session interface {
	IsAuthenticated() bool
	User() *models.User
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, reg models.Registration) error
	UserInfo(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, change models.PasswordChange) models.PasswordResult
	DeleteAccount(ctx context.Context) error
	Logout(ctx context.Context)
}

// Library is the playlist collection shown on the home screen.
type Library interface {
	Fetch(ctx context.Context) ([]models.Playlist, error)
	Delete(ctx context.Context, id int64) error
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	session Session
	library Library
	router  *router.Router
	logger  *log.Logger

	start  string
	screen Screen
	loc    router.Location
	width  int
	height int

	loginForm    form
	registerForm form
	profileForm  form
	passwordForm form

	playlists     list.Model
	user          *models.User
	editing       bool
	pendingDelete *models.Playlist
	confirmLeave  bool
	busy          bool

	status    string
	statusErr bool
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model that opens at start (a route path).
func NewModel(ctx context.Context, session Session, library Library, r *router.Router, logger *log.Logger, start string) *Model {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	if start == "" {
		start = router.PathRoot
	}

	playlists := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	playlists.Title = "Playlists"
	playlists.SetShowHelp(false)

	return &Model{
		ctx:          ctx,
		session:      session,
		library:      library,
		router:       r,
		logger:       logger,
		start:        start,
		loginForm:    newLoginForm(),
		registerForm: newRegisterForm(),
		profileForm:  newProfileForm(),
		passwordForm: newPasswordForm(),
		playlists:    playlists,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init navigates to the start path.
func (m *Model) Init() tea.Cmd {
	return m.navigate(m.start)
}

// Screen returns the active screen.
func (m *Model) Screen() Screen { return m.screen }

// Location returns the location the active screen was reached by.
func (m *Model) Location() router.Location { return m.loc }

// Status returns the flash message and whether it reports an error.
func (m *Model) Status() (string, bool) { return m.status, m.statusErr }

// navigate resolves path through the router and enters the resulting screen.
func (m *Model) navigate(path string) tea.Cmd {
	loc, err := m.router.Navigate(path)
	if err != nil {
		m.fail(err)
		return nil
	}

	screen, ok := screens[loc.Path]
	if !ok {
		m.fail(fmt.Errorf("%w: %s", shared.ErrRouteNotFound, loc.Path))
		return nil
	}

	m.logger.Debug("navigate", "requested", path, "location", loc.FullPath())
	m.loc = loc
	m.screen = screen
	m.pendingDelete = nil
	m.confirmLeave = false
	m.busy = false
	return m.enter()
}

func (m *Model) enter() tea.Cmd {
	switch m.screen {
	case LoginScreen:
		m.loginForm.reset()
		return m.loginForm.focusFirst()
	case RegisterScreen:
		m.registerForm.reset()
		return m.registerForm.focusFirst()
	case HomeScreen:
		return m.fetchPlaylists()
	case ProfileScreen:
		m.editing = false
		m.user = m.session.User()
		return m.loadUser()
	case SettingsScreen:
		m.passwordForm.reset()
		return m.passwordForm.focusFirst()
	}
	return nil
}

func (m *Model) flash(msg string) {
	m.status, m.statusErr = msg, false
}

func (m *Model) fail(err error) {
	m.status, m.statusErr = err.Error(), true
}

// afterFailure clears an expired session and re-runs navigation so the guard can redirect.
func (m *Model) afterFailure(err error) tea.Cmd {
	m.fail(err)
	if services.IsUnauthorized(err) && m.session.IsAuthenticated() {
		m.session.Logout(m.ctx)
	}
	if !m.session.IsAuthenticated() && m.screen != LoginScreen && m.screen != RegisterScreen {
		status := m.status
		cmd := m.navigate(m.loc.FullPath())
		m.status, m.statusErr = status, true
		return cmd
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlists.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case LoginScreen:
			return m.handleLoginKeys(msg)
		case RegisterScreen:
			return m.handleRegisterKeys(msg)
		case HomeScreen:
			return m.handleHomeKeys(msg)
		case ProfileScreen:
			return m.handleProfileKeys(msg)
		case SettingsScreen:
			return m.handleSettingsKeys(msg)
		}

	case Msg:
		return m, m.handleResult(msg)
	}

	return m.updateActive(msg)
}

func (m *Model) handleResult(msg Msg) tea.Cmd {
	m.busy = false
	err := msg.data.err

	switch msg.kind {
	case MsgLoggedIn:
		if err != nil {
			m.fail(err)
			return nil
		}
		target := m.router.AfterLogin(m.loc)
		cmd := m.navigate(target)
		m.flash("登录成功")
		return cmd

	case MsgRegistered:
		if err != nil {
			m.fail(err)
			return nil
		}
		cmd := m.navigate(router.PathLogin)
		m.flash("注册成功，请登录")
		return cmd

	case MsgUserLoaded:
		if err != nil {
			return m.afterFailure(err)
		}
		m.user = msg.data.user
		return nil

	case MsgProfileSaved:
		if err != nil {
			return m.afterFailure(err)
		}
		m.user = msg.data.user
		m.editing = false
		m.flash("资料已更新")
		return nil

	case MsgPlaylistsFetched:
		if err != nil {
			return m.afterFailure(err)
		}
		m.status = ""
		return m.playlists.SetItems(playlistItems(msg.data.playlists))

	case MsgPlaylistDeleted:
		if err != nil {
			return m.afterFailure(err)
		}
		for i, item := range m.playlists.Items() {
			if p, ok := item.(playlistItem); ok && p.playlist.ID == msg.data.id {
				m.playlists.RemoveItem(i)
				break
			}
		}
		m.flash(fmt.Sprintf("已删除歌单 #%d", msg.data.id))
		return nil

	case MsgPasswordChanged:
		result := msg.data.password
		m.status, m.statusErr = result.Message, !result.Success
		if result.Success {
			m.passwordForm.reset()
			return m.passwordForm.focusFirst()
		}
		return nil

	case MsgAccountDeleted:
		if err != nil {
			m.fail(err)
			return nil
		}
		cmd := m.navigate(router.PathLogin)
		m.flash("账号已注销")
		return cmd
	}
	return nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case LoginScreen:
		cmd = m.loginForm.update(msg)
	case RegisterScreen:
		cmd = m.registerForm.update(msg)
	case HomeScreen:
		m.playlists, cmd = m.playlists.Update(msg)
	case ProfileScreen:
		if m.editing {
			cmd = m.profileForm.update(msg)
		}
	case SettingsScreen:
		cmd = m.passwordForm.update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current screen.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case LoginScreen:
		body = m.renderLogin()
	case RegisterScreen:
		body = m.renderRegister()
	case HomeScreen:
		body = m.renderHome() + "\n" + m.help.View(m.keys)
	case ProfileScreen:
		body = m.renderProfile()
	case SettingsScreen:
		body = m.renderSettings()
	}
	return body + m.renderStatus()
}

func (m *Model) renderStatus() string {
	switch {
	case m.busy:
		return "\n" + styles.warn.Render("请稍候...")
	case m.status == "":
		return ""
	case m.statusErr:
		return "\n" + styles.err.Render(m.status)
	default:
		return "\n" + styles.ok.Render(m.status)
	}
}

// run wraps a blocking call as a command and marks the model busy until it reports back.
func (m *Model) run(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	m.busy = true
	m.status = ""
	ctx := m.ctx
	return func() tea.Msg { return fn(ctx) }
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return m.run(func(ctx context.Context) tea.Msg {
		playlists, err := m.library.Fetch(ctx)
		return playlistsFetchedMsg(playlists, err)
	})
}

func (m *Model) loadUser() tea.Cmd {
	return m.run(func(ctx context.Context) tea.Msg {
		user, err := m.session.UserInfo(ctx)
		return userLoadedMsg(user, err)
	})
}
