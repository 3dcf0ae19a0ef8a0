package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	got, err := Load(Source{Name: "twilio auth token", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("   "), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	_, err := Load(Source{Name: "bytez api key", File: path})
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("HR_TEST_SECRET", " env-value ")

	got, err := Load(Source{Name: "huggingface token", Env: "HR_TEST_SECRET"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "env-value" {
		t.Fatalf("expected env secret, got %q", got)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(Source{Name: "gemini api key", Env: "HR_TEST_UNSET_SECRET"})
	if err == nil || !strings.Contains(err.Error(), "HR_TEST_UNSET_SECRET") {
		t.Fatalf("expected hint about env var, got %v", err)
	}

	got, err := LoadOptional(Source{Name: "gemini api key"})
	if err != nil || got != "" {
		t.Fatalf("expected empty optional secret, got %q, %v", got, err)
	}
}
