package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// Storage contains configuration for the source object store.
type Storage struct {
	Endpoint     string `toml:"endpoint"`
	Region       string `toml:"region"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UseSSL       bool   `toml:"use_ssl"`
	SourceBucket string `toml:"source_bucket"`
}

// Destination describes where validated payloads are relocated.
// Type selects between a directory-backed and an object-store-backed layout.
type Destination struct {
	Type      string `toml:"type"`
	Directory string `toml:"directory"`
	Bucket    string `toml:"bucket"`
}

// Tool contains configuration for the external conformance tool.
type Tool struct {
	Binary    string `toml:"binary"`
	PolicyDir string `toml:"policy_dir"`
	Detection string `toml:"detection"`
	Timeout   int    `toml:"timeout"`
}

// BagCheck contains configuration for the external bag conformance checker.
type BagCheck struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Timeout int      `toml:"timeout"`
}

// Notifications contains configuration for outcome event publishing.
type Notifications struct {
	Endpoint       string `toml:"endpoint"`
	Topic          string `toml:"topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gatekeeper.
//
// Configuration sections by subsystem:
//   - Paths: working and log directories
//   - Storage: source object store connection and bucket
//   - Destination: directory- or bucket-backed relocation target
//   - Tool: conformance tool binary, policy directory, detection strategy
//   - BagCheck: external bag checker command
//   - Notifications: outcome event endpoint and topic
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Storage       Storage       `toml:"storage"`
	Destination   Destination   `toml:"destination"`
	Tool          Tool          `toml:"tool"`
	BagCheck      BagCheck      `toml:"bagcheck"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gatekeeper/config.toml")
}

// SampleConfig returns the embedded sample configuration contents.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gatekeeper.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a validation run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DirectoryDestination reports whether validated payloads relocate to a local
// directory tree rather than an object store.
func (c *Config) DirectoryDestination() bool {
	return c.Destination.Type == DestinationDirectory
}
