package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatterWithColor(t *testing.T) {
	os.Unsetenv("NO_COLOR")
	color.NoColor = false
	defer func() { color.NoColor = true }()

	result := Code.Sprint("sigcrypt config init")
	if strings.Contains(result, "`") {
		t.Errorf("Code.Sprint should not contain backticks when color is enabled, got: %s", result)
	}
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Code.Sprint should contain ANSI escape codes when color is enabled, got: %s", result)
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code adds backticks", Code, "sigcrypt keys", "`sigcrypt keys`"},
		{"Path has no decoration", Path, "~/.config/sigcrypt/config.toml", "~/.config/sigcrypt/config.toml"},
		{"Flag has no decoration", Flag, "--force", "--force"},
		{"Success has no decoration", Success, "usable", "usable"},
		{"Error has no decoration", Error, "ecdsa", "ecdsa"},
		{"Warning has no decoration", Warning, "stdout is a terminal", "stdout is a terminal"},
		{"Info has no decoration", Info, "hint", "hint"},
		{"Highlight adds quotes", Highlight, "SHA256:abc", "'SHA256:abc'"},
		{"Muted adds parentheses", Muted, "alice@laptop", "(alice@laptop)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.formatter.Sprint(tt.input)
			if got != tt.want {
				t.Errorf("Sprint(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatterSprintf(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := Highlight.Sprintf("%d bytes", 46)
	if got != "'46 bytes'" {
		t.Errorf("Highlight.Sprintf() = %q", got)
	}
}

func TestWriteFields(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFields(&buf, []Field{
		{"salt", "s1"},
		{"fingerprint", "SHA256:abc"},
	})
	if err != nil {
		t.Fatalf("WriteFields failed: %v", err)
	}

	want := "salt:        s1\nfingerprint: SHA256:abc\n"
	if buf.String() != want {
		t.Errorf("WriteFields wrote %q, want %q", buf.String(), want)
	}
}
