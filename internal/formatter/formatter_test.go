package formatter

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/melody/internal/models"
	"github.com/desertthunder/melody/internal/shared"
	th "github.com/desertthunder/melody/internal/testing"
)

func testPlaylists(t *testing.T) []models.Playlist {
	t.Helper()
	var playlists []models.Playlist
	raw := `[
		{"id":1,"name":"Focus","description":"<b>deep</b> work &amp; study","cover":"f.png"},
		{"id":2,"title":"Run | Fast"},
		{"id":3}
	]`
	if err := json.Unmarshal([]byte(raw), &playlists); err != nil {
		t.Fatalf("failed to decode playlists: %v", err)
	}
	return playlists
}

func TestExporters(t *testing.T) {
	t.Run("PlaylistsToText", func(t *testing.T) {
		output := string(PlaylistsToText(testPlaylists(t)))

		for _, want := range []string{"Playlists: 3", "1. Focus [1]", "deep work & study", "2. Run | Fast [2]", "3. Playlist 3 [3]"} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "<b>") {
			t.Error("expected markup to be stripped")
		}
	})

	t.Run("PlaylistsToText Empty", func(t *testing.T) {
		if got := string(PlaylistsToText(nil)); got != "No playlists.\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("PlaylistsToJSON Keeps Fields", func(t *testing.T) {
		data, err := PlaylistsToJSON(testPlaylists(t))
		if err != nil {
			t.Fatalf("PlaylistsToJSON failed: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded[0]["cover"] != "f.png" {
			t.Errorf("expected verbatim field, got %v", decoded[0])
		}
		if decoded[1]["title"] != "Run | Fast" {
			t.Errorf("expected original title key, got %v", decoded[1])
		}
	})

	t.Run("PlaylistsToJSON Nil", func(t *testing.T) {
		data, _ := PlaylistsToJSON(nil)
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected empty array, got %s", data)
		}
	})

	t.Run("PlaylistsToCSV", func(t *testing.T) {
		data, err := PlaylistsToCSV(testPlaylists(t))
		if err != nil {
			t.Fatalf("PlaylistsToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.HasPrefix(output, "ID,Name,Description\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Focus,deep work & study") {
			t.Errorf("CSV missing first row, got: %s", output)
		}
		if strings.Count(output, "\n") != 4 {
			t.Errorf("expected header and 3 rows, got: %s", output)
		}
	})

	t.Run("PlaylistsToMarkdown", func(t *testing.T) {
		output := string(PlaylistsToMarkdown("Mine", testPlaylists(t)))

		if !strings.HasPrefix(output, "# Mine\n") {
			t.Errorf("markdown missing title, got:\n%s", output)
		}
		if !strings.Contains(output, "**Playlists**: 3") {
			t.Error("markdown missing count")
		}
		if !strings.Contains(output, `| 2 | Run \| Fast |  |`) {
			t.Errorf("expected escaped pipe, got:\n%s", output)
		}
	})
}

func TestRender(t *testing.T) {
	playlists := testPlaylists(t)

	for _, format := range []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Render(format, playlists)
			if err != nil || len(data) == 0 {
				t.Errorf("Render(%s) failed: %v", format, err)
			}
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		if _, err := Render("yaml", playlists); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatText,
		"TXT":      FormatText,
		"json":     FormatJSON,
		"csv":      FormatCSV,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestProfileCard(t *testing.T) {
	t.Run("Full Profile", func(t *testing.T) {
		card := ProfileCard(&models.User{
			ID:        42,
			Username:  "alice",
			Nickname:  "Alice",
			Email:     "alice@example.com",
			Gender:    2,
			Bio:       "<script>x</script>hello",
			AvatarURL: "/api/default-avatar.jpg",
		})

		for _, want := range []string{"ID:       42", "Username: alice", "Gender:   female", "Bio:      hello", "Avatar:   /api/default-avatar.jpg"} {
			if !strings.Contains(card, want) {
				t.Errorf("card missing %q, got:\n%s", want, card)
			}
		}
		if strings.Contains(card, "Phone") {
			t.Error("expected empty fields to be omitted")
		}
	})

	t.Run("Nil User", func(t *testing.T) {
		if ProfileCard(nil) != "Not signed in.\n" {
			t.Error("unexpected card for nil user")
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Writes File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mine.csv")

		got, err := WriteExport(FormatCSV, testPlaylists(t), path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
		if !strings.HasPrefix(th.MustReadFile(t, path), "ID,Name") {
			t.Error("expected CSV content")
		}
	})

	t.Run("Default Filename", func(t *testing.T) {
		dir := t.TempDir()
		wd := th.MustGetwd(t)
		th.MustChdir(t, dir)
		defer th.MustChdir(t, wd)

		got, err := WriteExport(FormatMarkdown, nil, "")
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != "playlists.md" {
			t.Errorf("expected playlists.md, got %s", got)
		}
		th.AssertFileExists(t, filepath.Join(dir, got))
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "out.txt")
		if _, err := WriteExport(FormatText, nil, path); err == nil {
			t.Error("expected error for missing directory")
		}
		if _, err := os.Stat(path); err == nil {
			t.Error("expected no file to be written")
		}
	})
}
