package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds per-user settings from ~/.eg/config.yaml.
type GlobalConfig struct {
	Debug DebugConfig `yaml:"debug"`
	// NPM is the npm executable used when neither --npm nor EG_NPM is set.
	NPM string `yaml:"npm"`
}

// DebugConfig controls the debug log written under ~/.eg/debug.
type DebugConfig struct {
	// RetentionDays is how long daily debug logs are kept. 0 keeps them forever.
	RetentionDays int `yaml:"retention_days"`
}

// DefaultGlobalConfig returns the default global configuration.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Debug: DebugConfig{
			RetentionDays: 14,
		},
		NPM: "npm",
	}
}

// LoadGlobal reads ~/.eg/config.yaml and applies environment overrides.
func LoadGlobal() (*GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	if data, err := os.ReadFile(filepath.Join(GlobalConfigDir(), "config.yaml")); err == nil {
		_ = yaml.Unmarshal(data, cfg) // Ignore unmarshal errors, use defaults
	}

	if days := os.Getenv("EG_DEBUG_RETENTION_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			cfg.Debug.RetentionDays = n
		}
	}

	return cfg, nil
}

// GlobalConfigDir returns the path to ~/.eg.
func GlobalConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".eg")
	}
	return filepath.Join(homeDir, ".eg")
}
