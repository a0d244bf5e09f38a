package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLM.CheapModel == "" || cfg.LLM.StrongModel == "" {
		t.Error("default config must name both model tiers")
	}
	if cfg.LLM.CheapModel == cfg.LLM.StrongModel {
		t.Error("cheap and strong models should differ")
	}
	if cfg.Generation.ChunkWindowSize != 4 {
		t.Errorf("ChunkWindowSize = %d, want 4", cfg.Generation.ChunkWindowSize)
	}
	if cfg.Generation.RetrievalTopK != 3 {
		t.Errorf("RetrievalTopK = %d, want 3", cfg.Generation.RetrievalTopK)
	}
	if cfg.Generation.BatchSize < 2 || cfg.Generation.BatchSize > 3 {
		t.Errorf("BatchSize = %d, want 2-3", cfg.Generation.BatchSize)
	}
	if cfg.Generation.MaxChapters <= 0 {
		t.Error("MaxChapters must be bounded")
	}
}

func TestResolveEnvVars(t *testing.T) {
	os.Setenv("CARDFORGE_TEST_KEY", "secret123")
	defer os.Unsetenv("CARDFORGE_TEST_KEY")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "${CARDFORGE_TEST_KEY}", "secret123"},
		{"embedded", "key=${CARDFORGE_TEST_KEY}!", "key=secret123!"},
		{"no vars", "plain-value", "plain-value"},
		{"missing var", "${CARDFORGE_MISSING_VAR}", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnvVars(tt.input); got != tt.want {
				t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	if len(data) == 0 {
		t.Error("written config is empty")
	}
}
