package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credential")
	if err := os.WriteFile(path, []byte("  token-value \n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	secret, err := Load(Source{Name: "backend credential", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secret != "token-value" {
		t.Fatalf("expected trimmed secret, got %q", secret)
	}
}

func TestLoadFilePrecedesInlineValue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credential")
	if err := os.WriteFile(path, []byte("from-file"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	secret, err := Load(Source{File: path, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secret != "from-file" {
		t.Fatalf("expected file to win, got %q", secret)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TALENTSIFT_TEST_SECRET", "from-env")

	secret, err := Load(Source{Name: "api key", Env: "TALENTSIFT_TEST_SECRET", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if secret != "from-env" {
		t.Fatalf("expected env to win over inline, got %q", secret)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatal("expected error for empty source")
	}

	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("   "), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := Load(Source{Name: "api key", File: path}); err == nil {
		t.Fatal("expected error for empty file")
	}

	if _, err := Load(Source{File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
