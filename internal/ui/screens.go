package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/melody/internal/formatter"
	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/router"
	"github.com/desertthunder/melody/internal/session"
	"github.com/desertthunder/melody/internal/validators"
)

const msgPasswordMismatch = "两次输入的密码不一致"

func newLoginForm() form {
	return newForm(
		fieldSpec{name: "username", label: "Username", limit: 64},
		fieldSpec{name: "password", label: "Password", secret: true, limit: 64},
	)
}

func newRegisterForm() form {
	return newForm(
		fieldSpec{name: "username", label: "Username", limit: 64},
		fieldSpec{name: "password", label: "Password", secret: true, limit: 64},
		fieldSpec{name: "confirm", label: "Confirm", secret: true, limit: 64},
		fieldSpec{name: "nickname", label: "Nickname", limit: 64, hint: "defaults to username"},
		fieldSpec{name: "email", label: "Email", limit: 128},
		fieldSpec{name: "phone", label: "Phone", limit: 32},
		fieldSpec{name: "gender", label: "Gender", limit: 1, hint: "0 unset, 1 male, 2 female"},
		fieldSpec{name: "bio", label: "Bio", limit: 255},
	)
}

func newProfileForm() form {
	return newForm(
		fieldSpec{name: "nickname", label: "Nickname", limit: 64},
		fieldSpec{name: "email", label: "Email", limit: 128},
		fieldSpec{name: "phone", label: "Phone", limit: 32},
		fieldSpec{name: "gender", label: "Gender", limit: 1, hint: "0 unset, 1 male, 2 female"},
		fieldSpec{name: "bio", label: "Bio", limit: 255},
	)
}

func newPasswordForm() form {
	return newForm(
		fieldSpec{name: "old", label: "Current", secret: true, limit: 64},
		fieldSpec{name: "new", label: "New", secret: true, limit: 64},
		fieldSpec{name: "confirm", label: "Confirm", secret: true, limit: 64},
	)
}

// formKeys moves focus between fields and reports whether the form should be submitted.
func (m *Model) formKeys(f *form, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.submit):
		if f.onLast() {
			return nil, true
		}
		return f.next(), false
	case key.Matches(msg, m.keys.next):
		return f.next(), false
	case key.Matches(msg, m.keys.prev):
		return f.prev(), false
	}
	return f.update(msg), false
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.register):
		return m, m.navigate(router.PathRegister)
	case key.Matches(msg, m.keys.back):
		return m, tea.Quit
	}

	cmd, submit := m.formKeys(&m.loginForm, msg)
	if !submit {
		return m, cmd
	}

	username := m.loginForm.value("username")
	password := m.loginForm.value("password")
	if !m.loginForm.setErrors(map[string]string{
		"username": required(username, "用户名不能为空"),
		"password": required(password, validators.MsgPasswordRequired),
	}) {
		return m, nil
	}

	return m, m.run(func(ctx context.Context) tea.Msg {
		return loggedInMsg(m.session.Login(ctx, username, password))
	})
}

func (m *Model) handleRegisterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if key.Matches(msg, m.keys.back) {
		return m, m.navigate(router.PathLogin)
	}

	cmd, submit := m.formKeys(&m.registerForm, msg)
	if !submit {
		return m, cmd
	}

	f := &m.registerForm
	password := f.value("password")
	confirm := ""
	if f.value("confirm") != password {
		confirm = msgPasswordMismatch
	}
	if !f.setErrors(map[string]string{
		"username": required(strings.TrimSpace(f.value("username")), "用户名不能为空"),
		"password": validators.ValidatePassword(password),
		"confirm":  confirm,
		"email":    validators.ValidateEmail(f.value("email")),
	}) {
		return m, nil
	}

	reg := models.Registration{
		Username: strings.TrimSpace(f.value("username")),
		Password: password,
		Nickname: strings.TrimSpace(f.value("nickname")),
		Email:    f.value("email"),
		Phone:    f.value("phone"),
		Gender:   session.ParseGender(f.value("gender")),
		Bio:      f.value("bio"),
	}
	return m, m.run(func(ctx context.Context) tea.Msg {
		return registeredMsg(m.session.Register(ctx, reg))
	})
}

// navKeys handles the screen switches shared by the signed-in screens.
func (m *Model) navKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.home) && m.screen != HomeScreen:
		return m.navigate(router.PathHome), true
	case key.Matches(msg, m.keys.profile) && m.screen != ProfileScreen:
		return m.navigate(router.PathProfile), true
	case key.Matches(msg, m.keys.settings) && m.screen != SettingsScreen:
		return m.navigate(router.PathSettings), true
	case key.Matches(msg, m.keys.logout):
		m.session.Logout(m.ctx)
		cmd := m.navigate(router.PathLogin)
		m.flash("已退出登录")
		return cmd, true
	}
	return nil, false
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingDelete != nil {
		switch {
		case key.Matches(msg, m.keys.yes):
			id := m.pendingDelete.ID
			m.pendingDelete = nil
			return m, m.run(func(ctx context.Context) tea.Msg {
				return playlistDeletedMsg(id, m.library.Delete(ctx, id))
			})
		case key.Matches(msg, m.keys.no):
			m.pendingDelete = nil
		}
		return m, nil
	}

	if m.busy || m.playlists.SettingFilter() {
		return m.updateActive(msg)
	}
	if cmd, ok := m.navKeys(msg); ok {
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchPlaylists()
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.playlists.SelectedItem().(playlistItem); ok {
			p := item.playlist
			m.pendingDelete = &p
		}
		return m, nil
	}
	return m.updateActive(msg)
}

func (m *Model) handleProfileKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		if m.busy {
			return m, nil
		}
		if key.Matches(msg, m.keys.back) {
			m.editing = false
			return m, nil
		}
		cmd, submit := m.formKeys(&m.profileForm, msg)
		if !submit {
			return m, cmd
		}
		return m, m.saveProfile()
	}

	if cmd, ok := m.navKeys(msg); ok {
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.refresh):
		return m, m.loadUser()
	case key.Matches(msg, m.keys.edit) && m.user != nil:
		m.startEditing()
		return m, m.profileForm.focusFirst()
	}
	return m, nil
}

func (m *Model) startEditing() {
	m.editing = true
	m.profileForm.reset()
	m.profileForm.set("nickname", m.user.Nickname)
	m.profileForm.set("email", m.user.Email)
	m.profileForm.set("phone", m.user.Phone)
	m.profileForm.set("gender", strconv.Itoa(m.user.Gender))
	m.profileForm.set("bio", m.user.Bio)
}

func (m *Model) saveProfile() tea.Cmd {
	f := &m.profileForm
	email := f.value("email")
	emailErr := ""
	if email != "" {
		emailErr = validators.ValidateEmail(email)
	}
	if !f.setErrors(map[string]string{"email": emailErr}) {
		return nil
	}

	update := models.ProfileUpdate{
		Nickname: f.value("nickname"),
		Email:    email,
		Phone:    f.value("phone"),
		Gender:   session.ParseGender(f.value("gender")),
		Bio:      f.value("bio"),
	}
	return m.run(func(ctx context.Context) tea.Msg {
		user, err := m.session.UpdateProfile(ctx, update)
		return profileSavedMsg(user, err)
	})
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmLeave {
		switch {
		case key.Matches(msg, m.keys.yes):
			m.confirmLeave = false
			return m, m.run(func(ctx context.Context) tea.Msg {
				return accountDeletedMsg(m.session.DeleteAccount(ctx))
			})
		case key.Matches(msg, m.keys.no):
			m.confirmLeave = false
		}
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.forceQ):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m, m.navigate(router.PathHome)
	case key.Matches(msg, m.keys.deleteMe):
		m.confirmLeave = true
		return m, nil
	case key.Matches(msg, m.keys.logout):
		cmd, _ := m.navKeys(msg)
		return m, cmd
	}

	cmd, submit := m.formKeys(&m.passwordForm, msg)
	if !submit {
		return m, cmd
	}

	f := &m.passwordForm
	newPassword := f.value("new")
	confirm := ""
	if f.value("confirm") != newPassword {
		confirm = msgPasswordMismatch
	}
	if !f.setErrors(map[string]string{
		"old":     required(f.value("old"), validators.MsgPasswordRequired),
		"new":     validators.ValidatePassword(newPassword),
		"confirm": confirm,
	}) {
		return m, nil
	}

	change := models.PasswordChange{OldPassword: f.value("old"), NewPassword: newPassword}
	return m, m.run(func(ctx context.Context) tea.Msg {
		return passwordChangedMsg(m.session.UpdatePassword(ctx, change))
	})
}

func required(v, msg string) string {
	if v == "" {
		return msg
	}
	return ""
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Sign in") + "\n")
	if redirect := m.loc.Query.Get(router.RedirectParam); redirect != "" {
		b.WriteString(styles.warn.Render("Sign in to continue to "+redirect) + "\n\n")
	}
	b.WriteString(m.loginForm.view())
	b.WriteString("\n" + styles.help.Render("enter: submit • tab: next field • ctrl+r: register • esc: quit"))
	return b.String()
}

func (m *Model) renderRegister() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Create an account") + "\n")
	b.WriteString(m.registerForm.view())
	b.WriteString("\n" + styles.help.Render("enter: next/submit • tab: next field • esc: back to sign in"))
	return b.String()
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(m.playlists.View())
	b.WriteString("\n")
	if p := m.pendingDelete; p != nil {
		b.WriteString(styles.warn.Render(fmt.Sprintf("Delete %q (#%d)? y/n", playlistItem{playlist: *p}.Title(), p.ID)))
	}
	return b.String()
}

func (m *Model) renderProfile() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Profile") + "\n")
	if m.editing {
		b.WriteString(m.profileForm.view())
		b.WriteString("\n" + styles.help.Render("enter: next/save • tab: next field • esc: cancel"))
		return b.String()
	}

	b.WriteString(formatter.ProfileCard(m.user))
	b.WriteString("\n" + styles.help.Render("e: edit • r: reload • h: home • s: settings • ctrl+l: log out • q: quit"))
	return b.String()
}

func (m *Model) renderSettings() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Settings") + "\n")
	b.WriteString(styles.label.Render("Password") + "\n")
	b.WriteString(m.passwordForm.view())
	if m.confirmLeave {
		b.WriteString("\n" + styles.err.Render("Permanently delete this account? y/n"))
		return b.String()
	}
	b.WriteString("\n" + styles.help.Render("enter: next/save • esc: home • ctrl+x: delete account • ctrl+l: log out"))
	return b.String()
}
