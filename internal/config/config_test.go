package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"profile": "profile.json",
		"api_key": "test-key",
		"use_browser": true,
		"debounce_ms": 400,
		"port": 8080,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "profile.json", cfg.ProfilePath)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.True(t, cfg.UseBrowser)
	assert.Equal(t, 400, cfg.DebounceMs)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := &Config{
		DebounceMs: -1,
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "debounce_ms")
}

func TestValidate_PortRange(t *testing.T) {
	cfg := &Config{Port: 70000}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidate_MissingProfile(t *testing.T) {
	cfg := &Config{ProfilePath: "/nonexistent/profile.json"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "profile file not found")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		APIKey:       "key",
		TimeoutSecs:  45,
		DebounceMs:   300,
		MaxScanNodes: 5000,
		Port:         8080,
	}

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		ProfilePath:  "default-profile.json",
		APIKey:       "default-key",
		DebounceMs:   300,
		MaxScanNodes: 5000,
		Port:         8080,
	}

	partial := Config{
		APIKey:     "custom-key",
		DebounceMs: 150,
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "custom-key", merged.APIKey)
	assert.Equal(t, 150, merged.DebounceMs)

	// Default values should fill in empty fields
	assert.Equal(t, "default-profile.json", merged.ProfilePath)
	assert.Equal(t, 5000, merged.MaxScanNodes)
	assert.Equal(t, 8080, merged.Port)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{
		ProfilePath: "mine.json",
		Port:        9090,
	}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "mine.json", merged.ProfilePath)
	assert.Equal(t, 9090, merged.Port)
}
