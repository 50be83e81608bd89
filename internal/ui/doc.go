// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// Screens are addressed by route path and every screen change goes through the router, so the
// navigation guard gates the TUI the same way it gates CLI commands:
//   - /login [LoginScreen] : credentials form; forwards to the redirect parameter on success
//   - /register [RegisterScreen] : account form with inline email/password validation
//   - /home [HomeScreen] : the playlist library with refresh and delete
//   - /profile [ProfileScreen] : profile card and edit form
//   - /settings [SettingsScreen] : password change with inline result, account deletion, logout
//
// The [Model] implements the standard Init/Update/View pattern. Blocking session and library calls
// run as [tea.Cmd] functions and report back through the [Msg] union type.
//
// Forms use tab/shift+tab to move between fields and enter to submit; list screens use vim-style
// bindings with contextual help from charmbracelet/bubbles/help.
package ui
