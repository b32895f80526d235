package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pricewatch/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
providers:
  priority:
    - openrouter
    - helicone
  disabled:
    - manual
exclusions:
  id_contains:
    - "-internal"
  id_prefixes:
    - test-
  owned_by:
    - poe
overrides:
  gpt-4o:
    flagged: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"openrouter", "helicone"}, cfg.Providers.Priority)
	assert.Equal(t, []string{"manual"}, cfg.Providers.Disabled)
	assert.Equal(t, []string{"-internal"}, cfg.Exclusions.IDContains)
	assert.Equal(t, []string{"test-"}, cfg.Exclusions.IDPrefixes)
	assert.Equal(t, []string{"poe"}, cfg.Exclusions.OwnedBy)
	require.Contains(t, cfg.Overrides, "gpt-4o")
	assert.Equal(t, true, cfg.Overrides["gpt-4o"]["flagged"])
}

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "providers: [not: valid: yaml")

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadCleansProviderLists(t *testing.T) {
	path := writeConfig(t, `
providers:
  priority:
    - "  openrouter  "
    - ""
    - helicone
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"openrouter", "helicone"}, cfg.Providers.Priority)
}

func TestShouldExclude(t *testing.T) {
	e := &config.Exclusions{
		IDContains: []string{"-preview"},
		IDSuffixes: []string{"-test"},
		IDPrefixes: []string{"Internal-"},
		OwnedBy:    []string{"Poe"},
	}

	tests := []struct {
		name  string
		model map[string]any
		want  bool
	}{
		{name: "contains match", model: map[string]any{"id": "gpt-4o-preview-1"}, want: true},
		{name: "suffix match", model: map[string]any{"id": "claude-3-test"}, want: true},
		{name: "prefix match case-insensitive", model: map[string]any{"id": "internal-bot"}, want: true},
		{name: "owner match case-insensitive", model: map[string]any{"id": "gpt-4o", "owned_by": "poe"}, want: true},
		{name: "no match", model: map[string]any{"id": "gpt-4o", "owned_by": "openai"}, want: false},
		{name: "missing fields", model: map[string]any{}, want: false},
		{name: "non-string id", model: map[string]any{"id": 42}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ShouldExclude(tt.model))
		})
	}
}

func TestShouldExcludeNilReceiver(t *testing.T) {
	var e *config.Exclusions
	assert.False(t, e.ShouldExclude(map[string]any{"id": "anything"}))
}
