// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	ProfilePath string `json:"profile,omitempty"` // Path to applicant profile JSON

	// Behavior
	APIKey       string `json:"api_key,omitempty"`        // Gemini API key
	UseBrowser   bool   `json:"use_browser,omitempty"`    // Permit headless browser for SPA sites
	Verbose      bool   `json:"verbose,omitempty"`        // Print detailed debug information
	TimeoutSecs  int    `json:"timeout_secs,omitempty"`   // Browser operation timeout in seconds
	DebounceMs   int    `json:"debounce_ms,omitempty"`    // Mutation watcher debounce window
	MaxScanNodes int    `json:"max_scan_nodes,omitempty"` // Node budget for the page capture script

	// Server
	Port int `json:"port,omitempty"` // HTTP server port
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.TimeoutSecs < 0 {
		return fmt.Errorf("config error: 'timeout_secs' must be non-negative")
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("config error: 'debounce_ms' must be non-negative")
	}
	if c.MaxScanNodes < 0 {
		return fmt.Errorf("config error: 'max_scan_nodes' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be in [0, 65535]")
	}

	// Validate file paths exist (if specified)
	if c.ProfilePath != "" {
		if _, err := os.Stat(c.ProfilePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile file not found: %s", c.ProfilePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.ProfilePath == "" {
		result.ProfilePath = defaults.ProfilePath
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	// Int fields: use default if zero
	if result.TimeoutSecs == 0 {
		result.TimeoutSecs = defaults.TimeoutSecs
	}
	if result.DebounceMs == 0 {
		result.DebounceMs = defaults.DebounceMs
	}
	if result.MaxScanNodes == 0 {
		result.MaxScanNodes = defaults.MaxScanNodes
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
