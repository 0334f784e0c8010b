package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outline-agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
normalize:
  margin: 40
font_profile:
  scope: document
  max_levels: 4
selection:
  per_document_cap: 2
pipeline:
  workers: 8
verbose: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 40.0, cfg.Normalize.Margin)
	assert.Equal(t, "document", cfg.FontProfile.Scope)
	assert.Equal(t, 4, cfg.FontProfile.MaxLevels)
	assert.Equal(t, 2, cfg.Selection.PerDocumentCap)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.True(t, cfg.Verbose)

	// Unset keys fall back to defaults
	assert.Equal(t, 0.3, cfg.FontProfile.Epsilon)
	assert.Equal(t, 25, cfg.Selection.MaxSections)
	assert.Equal(t, "collection_input.json", cfg.Analyze.InputName)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "pipeline:\n  workers: 2\n")
	t.Setenv("OUTLINE_AGENT_PIPELINE_WORKERS", "6")
	t.Setenv("OUTLINE_AGENT_LOG_FORMAT", "json")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Pipeline.Workers)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "font_profile: [unterminated")

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/outline-agent.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_NoPathUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "font_profile:\n  scope: chapter\n")

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "Scope")
}

func TestValidate_Defaults(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative margin", func(c *Config) { c.Normalize.Margin = -1 }},
		{"too many levels", func(c *Config) { c.FontProfile.MaxLevels = 5 }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
		{"missing families file", func(c *Config) { c.Persona.FamiliesFile = "/nonexistent/families.yaml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error")
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		FontProfile: FontProfileConfig{Scope: "document"},
		Selection:   SelectionConfig{MaxSections: 10},
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, "document", merged.FontProfile.Scope)
	assert.Equal(t, 10, merged.Selection.MaxSections)
	assert.Equal(t, 3, merged.Selection.PerDocumentCap)
	assert.Equal(t, 50.0, merged.Normalize.Margin)
	assert.Equal(t, "info", merged.Log.Level)
	assert.NoError(t, merged.Validate())
}
