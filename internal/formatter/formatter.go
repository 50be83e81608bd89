// package formatter renders playlists and profiles for terminal output and file export (text, JSON, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/shared"
)

// Format selects a playlist rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name or a common file extension ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Render converts playlists to the requested format.
func Render(format Format, playlists []models.Playlist) ([]byte, error) {
	switch format {
	case FormatText, "":
		return PlaylistsToText(playlists), nil
	case FormatJSON:
		return PlaylistsToJSON(playlists)
	case FormatCSV:
		return PlaylistsToCSV(playlists)
	case FormatMarkdown:
		return PlaylistsToMarkdown("Playlists", playlists), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// PlaylistsToText renders one numbered line per playlist with its id.
func PlaylistsToText(playlists []models.Playlist) []byte {
	var buf bytes.Buffer

	if len(playlists) == 0 {
		buf.WriteString("No playlists.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Playlists: %d\n\n", len(playlists)))
	for i, p := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s [%d]\n", i+1, displayName(p), p.ID))
		if desc := shared.PlainText(p.Description); desc != "" {
			buf.WriteString(fmt.Sprintf("   %s\n", desc))
		}
	}
	return buf.Bytes()
}

// PlaylistsToJSON writes the playlists exactly as the API returned them, indented.
func PlaylistsToJSON(playlists []models.Playlist) ([]byte, error) {
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	data, err := json.MarshalIndent(playlists, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode playlists: %w", err)
	}
	return append(data, '\n'), nil
}

// PlaylistsToCSV converts playlists to CSV with columns: ID, Name, Description
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Description"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range playlists {
		record := []string{strconv.FormatInt(p.ID, 10), p.Name, shared.PlainText(p.Description)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// PlaylistsToMarkdown renders a titled Markdown table.
func PlaylistsToMarkdown(title string, playlists []models.Playlist) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Playlists**: %d\n\n", len(playlists)))
	if len(playlists) == 0 {
		return buf.Bytes()
	}

	buf.WriteString("| ID | Name | Description |\n")
	buf.WriteString("|----|------|-------------|\n")
	for _, p := range playlists {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s |\n", p.ID, escapeCell(displayName(p)), escapeCell(shared.PlainText(p.Description))))
	}
	return buf.Bytes()
}

// ProfileCard renders a user profile as aligned "label: value" lines.
func ProfileCard(user *models.User) string {
	if user == nil {
		return "Not signed in.\n"
	}

	rows := [][2]string{
		{"ID", strconv.FormatInt(user.ID, 10)},
		{"Username", user.Username},
		{"Nickname", user.Nickname},
		{"Email", user.Email},
		{"Phone", user.Phone},
		{"Gender", GenderLabel(user.Gender)},
		{"Bio", shared.PlainText(user.Bio)},
		{"Avatar", user.AvatarURL},
	}

	var b strings.Builder
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("%-9s %s\n", row[0]+":", row[1]))
	}
	return b.String()
}

// GenderLabel names the backend's gender codes.
func GenderLabel(g int) string {
	switch g {
	case 1:
		return "male"
	case 2:
		return "female"
	default:
		return "unspecified"
	}
}

// WriteExport renders playlists in format and writes them to path.
//
// Defaults to playlists.{ext} as the filename.
func WriteExport(format Format, playlists []models.Playlist, path string) (string, error) {
	if path == "" {
		path = "playlists." + Extension(format)
	}

	data, err := Render(format, playlists)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// Extension returns the file extension for format.
func Extension(format Format) string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

func displayName(p models.Playlist) string {
	if p.Name != "" {
		return shared.PlainText(p.Name)
	}
	return fmt.Sprintf("Playlist %d", p.ID)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
