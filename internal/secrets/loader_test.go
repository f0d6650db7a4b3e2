package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("RIBBIT_TEST_KEY", "from-env")

	got, err := Load(Source{Name: "gemini api key", Value: "inline", File: path, Env: "RIBBIT_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadValueThenEnv(t *testing.T) {
	t.Setenv("RIBBIT_TEST_KEY", " from-env ")

	got, err := Load(Source{Value: " inline ", Env: "RIBBIT_TEST_KEY"})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline secret, got %q (%v)", got, err)
	}

	got, err = Load(Source{Env: "RIBBIT_TEST_KEY"})
	if err != nil || got != "from-env" {
		t.Fatalf("expected env secret, got %q (%v)", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("RIBBIT_EMPTY_KEY", "")

	tests := []struct {
		name   string
		source func(t *testing.T) Source
		expect string
	}{
		{
			name:   "nothing configured",
			source: func(*testing.T) Source { return Source{Name: "sarvam api key"} },
			expect: "sarvam api key is not configured",
		},
		{
			name:   "default name",
			source: func(*testing.T) Source { return Source{} },
			expect: "secret is not configured",
		},
		{
			name:   "empty env",
			source: func(*testing.T) Source { return Source{Name: "key", Env: "RIBBIT_EMPTY_KEY"} },
			expect: "key is not configured (set RIBBIT_EMPTY_KEY)",
		},
		{
			name: "empty file",
			source: func(t *testing.T) Source {
				path := filepath.Join(t.TempDir(), "empty")
				if err := os.WriteFile(path, []byte("\n"), 0o600); err != nil {
					t.Fatalf("write file: %v", err)
				}
				return Source{Name: "key", File: path, Value: "ignored"}
			},
			expect: "is empty",
		},
		{
			name: "missing file",
			source: func(t *testing.T) Source {
				return Source{Name: "key", File: filepath.Join(t.TempDir(), "missing")}
			},
			expect: "reading key from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.source(t))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error to contain %q, got %q", tt.expect, err.Error())
			}
		})
	}
}
