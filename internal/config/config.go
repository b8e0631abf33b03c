// Package config loads the taskdesk configuration: a YAML file with
// environment-variable overrides. The AI credential itself stays in the
// environment (GROQ_API_KEY) and is never written to the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything the cmds need to wire the core together.
type Config struct {
	// DBPath is the SQLite file backing the task store.
	DBPath string `yaml:"db_path"`

	// PostgresDSN, when set, selects the Postgres store backend instead of
	// the SQLite file.
	PostgresDSN string `yaml:"postgres_dsn"`

	// Model is the chat-completions model name.
	Model string `yaml:"model"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DBPath: filepath.Join(home, ".local", "share", "taskdesk", "tasks.db"),
	}
}

// DefaultPath is the conventional config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "taskdesk", "config.yaml")
}

// Load reads the file at path, falling back to defaults when it does not
// exist, then applies environment overrides (TASKDESK_DB, TASKDESK_MODEL,
// TASKDESK_POSTGRES_DSN).
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("TASKDESK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TASKDESK_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("TASKDESK_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	return cfg, nil
}
