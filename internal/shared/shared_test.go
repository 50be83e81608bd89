package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestPlainText(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "just text", want: "just text"},
		{name: "markup stripped", in: "<b>bold</b> and <i>italic</i>", want: "bold and italic"},
		{name: "script removed", in: "hi<script>alert(1)</script>", want: "hi"},
		{name: "entities decoded", in: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "whitespace trimmed", in: "  <p>padded</p>  ", want: "padded"},
		{name: "unicode kept", in: "<span>我的歌单</span>", want: "我的歌单"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	t.Run("tilde only", func(t *testing.T) {
		if got := ExpandHome("~"); got != home {
			t.Errorf("got %q, want %q", got, home)
		}
	})

	t.Run("tilde prefix", func(t *testing.T) {
		want := filepath.Join(home, ".melody", "token")
		if got := ExpandHome("~/.melody/token"); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("untouched", func(t *testing.T) {
		for _, p := range []string{"/tmp/x", "relative/path", "~user/x"} {
			if got := ExpandHome(p); got != p {
				t.Errorf("ExpandHome(%q) = %q", p, got)
			}
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Fatal("expected distinct ids")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("GenerateID() = %q is not a uuid: %v", a, err)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "melody.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("hello", "component", "test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing entry: %q", data)
	}

	child := WithLogger(logger, "component", "child")
	child.Info("from child")
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "component=child") {
		t.Errorf("child logger fields missing: %q", data)
	}
}
