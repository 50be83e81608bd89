package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/shared"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.Title() }
func (i playlistItem) Title() string {
	if name := shared.PlainText(i.playlist.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Playlist %d", i.playlist.ID)
}
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("#%d", i.playlist.ID)
	if d := shared.PlainText(i.playlist.Description); d != "" {
		desc = fmt.Sprintf("%s • %s", desc, d)
	}
	return desc
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p}
	}
	return items
}
