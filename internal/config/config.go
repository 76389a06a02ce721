package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file inside a project directory.
const FileName = "fintrack.yaml"

// Config represents the top-level fintrack.yaml configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
	Git     GitConfig     `yaml:"git"`
}

// StorageConfig selects the ledger backend. Path is the database file for
// sqlite and the data directory for csv. Relative paths are resolved
// against the project directory.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// ExportConfig controls where exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig sets the log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

var (
	validBackends = []string{"sqlite", "csv", "memory"}
	validLevels   = []string{"debug", "info", "warn", "error"}
	validFormats  = []string{"console", "json"}
)

// Load reads a fintrack.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    filepath.Join("data", "fintrack.db"),
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "FinTrack",
			AuthorEmail: "fintrack@localhost",
		},
	}
}

// DefaultStoragePath is the conventional location for backend.
func DefaultStoragePath(backend string) string {
	switch backend {
	case "csv":
		return "data"
	case "sqlite":
		return filepath.Join("data", "fintrack.db")
	default:
		return ""
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if !slices.Contains(validBackends, c.Storage.Backend) {
		problems = append(problems, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.Storage.Backend, validBackends))
	}
	if c.Storage.Backend != "memory" && c.Storage.Path == "" {
		problems = append(problems, fmt.Sprintf("storage path cannot be empty when using %s backend", c.Storage.Backend))
	}
	if c.Export.Dir == "" {
		problems = append(problems, "export dir cannot be empty")
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.Logging.Level, validLevels))
	}
	if !slices.Contains(validFormats, strings.ToLower(c.Logging.Format)) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.Logging.Format, validFormats))
	}
	if c.Git.AutoCommit && (c.Git.AuthorName == "" || c.Git.AuthorEmail == "") {
		problems = append(problems, "git author name and email are required when auto_commit is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Resolve returns p relative to root unless it is already absolute.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
