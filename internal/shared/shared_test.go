package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestCharCount(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: "", want: 0},
		{name: "ascii", input: "hello", want: 5},
		{name: "accented", input: "café", want: 4},
		{name: "japanese", input: "日本語", want: 3},
		{name: "emoji", input: "🙂", want: 1},
		{name: "flag is one character", input: "🇯🇵", want: 1},
		{name: "combining mark", input: "e\u0301", want: 1},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := CharCount(tt.input); got != tt.want {
				t.Errorf("CharCount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateChars(t *testing.T) {
	tc := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{name: "empty", input: "", n: 5, want: ""},
		{name: "no truncation needed", input: "hello", n: 10, want: "hello"},
		{name: "exact length", input: "hello", n: 5, want: "hello"},
		{name: "truncated", input: "hello world", n: 5, want: "hello"},
		{name: "zero limit", input: "hello", n: 0, want: ""},
		{name: "negative limit", input: "hello", n: -1, want: ""},
		{name: "multibyte", input: "日本語テキスト", n: 3, want: "日本語"},
		{name: "keeps clusters whole", input: "🇯🇵🇺🇸🇫🇷", n: 2, want: "🇯🇵🇺🇸"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateChars(tt.input, tt.n); got != tt.want {
				t.Errorf("TruncateChars(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	for input, want := range map[string]bool{
		"":          true,
		"   ":       true,
		"\n\t ":     true,
		"a":         false,
		"  hello  ": false,
	} {
		if got := IsBlank(input); got != want {
			t.Errorf("IsBlank(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	for input, want := range map[string]string{
		"":         "",
		"x":        "X",
		"mastodon": "Mastodon",
		"bluesky":  "Bluesky",
	} {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "composer")
		logger.Info("loaded")

		if !strings.Contains(buf.String(), "component=composer") {
			t.Errorf("expected child logger fields, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters messages", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected info message to be filtered, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("written")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "written") {
			t.Errorf("expected log file to contain message, got %q", string(data))
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID string of length 36, got %d", len(a))
	}
}
