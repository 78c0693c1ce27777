package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	t.Setenv("TEST_GEMINI_KEY", "from-env")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "file wins", src: Source{File: file, Value: "inline", Env: "TEST_GEMINI_KEY"}, expect: "from-file"},
		{name: "value before env", src: Source{Value: " inline ", Env: "TEST_GEMINI_KEY"}, expect: "inline"},
		{name: "env", src: Source{Env: "TEST_GEMINI_KEY"}, expect: "from-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	tests := []struct {
		name    string
		src     Source
		contain string
	}{
		{name: "missing file", src: Source{Name: "gemini api key", File: filepath.Join(dir, "nope")}, contain: "reading gemini api key"},
		{name: "empty file", src: Source{File: empty}, contain: "is empty"},
		{name: "unset env", src: Source{Name: "key", Env: "TEST_UNSET_KEY_VAR"}, contain: "set TEST_UNSET_KEY_VAR"},
		{name: "nothing", src: Source{}, contain: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.contain) {
				t.Fatalf("expected error containing %q, got %v", tt.contain, err)
			}
		})
	}
}
