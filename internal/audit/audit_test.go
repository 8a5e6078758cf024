package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLog_AppendsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")

	first := NewEntry("encrypt")
	first.KeyFingerprint = "SHA256:abc"
	first.Options = []string{"-aes-256-cbc", "-md", "sha512"}
	if err := Log(path, first); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := Log(path, Entry{Operation: "decrypt", ExitCode: 1}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	entries, err := ReadEntries(path)
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].ID != first.ID || entries[0].KeyFingerprint != "SHA256:abc" {
		t.Errorf("first entry mismatch: %+v", entries[0])
	}
	if len(entries[0].Options) != 3 {
		t.Errorf("options not recorded: %+v", entries[0].Options)
	}
	if entries[1].Operation != "decrypt" || entries[1].ExitCode != 1 {
		t.Errorf("second entry mismatch: %+v", entries[1])
	}
	if _, err := uuid.Parse(entries[1].ID); err != nil {
		t.Errorf("missing id was not filled in: %q", entries[1].ID)
	}
	if entries[1].Timestamp == "" {
		t.Error("missing timestamp was not filled in")
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	if err := Log(path, NewEntry("encrypt")); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if strings.Contains(line, `"key"`) || strings.Contains(line, `"options"`) {
		t.Errorf("empty fields should be omitted: %s", line)
	}
}

func TestLog_EmptyPathIsDisabled(t *testing.T) {
	if err := Log("", NewEntry("encrypt")); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

func TestLog_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatalf("creating blocker: %v", err)
	}

	if err := Log(filepath.Join(blocker, "audit.jsonl"), NewEntry("encrypt")); err == nil {
		t.Error("expected an error when the log directory is a file")
	}
}

func TestReadEntries_Missing(t *testing.T) {
	entries, err := ReadEntries(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil || entries != nil {
		t.Errorf("expected no entries and no error, got %v, %v", entries, err)
	}
}

func TestParseEntries_SkipsMalformed(t *testing.T) {
	data := []byte(`{"id":"1","ts":"2026-01-15T10:30:00.123456Z","op":"encrypt"}
{not json
{"id":"2","ts":"2026-01-15T10:35:00.456789Z","op":"decrypt","key":"SHA256:abc"}

`)

	entries := ParseEntries(data)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].KeyFingerprint != "SHA256:abc" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}
