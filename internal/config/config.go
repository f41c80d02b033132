// Package config loads gss-search settings from <base_dir>/config.yaml and
// resolves the base directory every other component receives explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/gss-search/internal/table"
)

// Environment variables read by the configuration layer.
const (
	// EnvHome overrides the base directory.
	EnvHome = "GSS_SEARCH_HOME"

	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "GSS_SEARCH_LOG_LEVEL"
)

// defaultDirName is the base directory name under the user's home.
const defaultDirName = ".gss-search"

// configFileName is the config file name inside the base directory.
const configFileName = "config.yaml"

// Config is the full set of user settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Auth    AuthConfig    `yaml:"auth"`
	Display DisplayConfig `yaml:"display"`

	// baseDir is where config.yaml, the cache and the token cache live.
	baseDir string
}

// AuthConfig locates the OAuth client secret.
type AuthConfig struct {
	// ClientSecretFile is a Google "installed app" client secret JSON file.
	// Empty means ./clientsecret.json, then <base_dir>/clientsecret.json.
	ClientSecretFile string `yaml:"client_secret_file"`
}

// DisplayConfig controls single-line row rendering.
type DisplayConfig struct {
	MaxColumnWidth int    `yaml:"max_column_width"`
	Delimiter      string `yaml:"delimiter"`
}

// RenderOptions converts the display settings for the table renderer.
func (d DisplayConfig) RenderOptions() table.RenderOptions {
	return table.RenderOptions{MaxColumnWidth: d.MaxColumnWidth, Delimiter: d.Delimiter}
}

// New returns the default configuration rooted at baseDir.
func New(baseDir string) *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  zerolog.InfoLevel.String(),
			Format: "json",
		},
		Display: DisplayConfig{
			MaxColumnWidth: table.DefaultMaxColumnWidth,
			Delimiter:      table.DefaultDelimiter,
		},
		baseDir: baseDir,
	}
}

// Load returns the defaults for baseDir with <baseDir>/config.yaml merged on
// top. A missing file is not an error. Environment overrides are applied last.
func Load(baseDir string) (*Config, error) {
	cfg := New(baseDir)

	if _, err := os.Stat(cfg.ConfigPath()); err == nil {
		if mergeErr := ShallowMergeYAML(cfg, cfg.ConfigPath()); mergeErr != nil {
			return nil, mergeErr
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot access config path %s: %w", cfg.ConfigPath(), err)
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveBaseDir determines the base directory. It checks (in order):
//  1. flagValue (--home CLI flag)
//  2. GSS_SEARCH_HOME env var
//  3. ~/.gss-search
//
// The returned path is absolute.
func ResolveBaseDir(flagValue string) (string, error) {
	dir := flagValue
	if dir == "" {
		dir = os.Getenv(EnvHome)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("determining home directory: %w", err)
		}
		dir = filepath.Join(home, defaultDirName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory %s: %w", dir, err)
	}
	return abs, nil
}

// BaseDir returns the directory the config was loaded for.
func (c *Config) BaseDir() string {
	return c.baseDir
}

// ConfigPath returns <base_dir>/config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.baseDir, configFileName)
}

// TokenCachePath returns where OAuth tokens are persisted.
func (c *Config) TokenCachePath() string {
	return filepath.Join(c.baseDir, "tokencache.json")
}

// ClientSecretCandidates lists client secret files to try, in order.
func (c *Config) ClientSecretCandidates() []string {
	if c.Auth.ClientSecretFile != "" {
		return []string{c.Auth.ClientSecretFile}
	}
	return []string{"clientsecret.json", filepath.Join(c.baseDir, "clientsecret.json")}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level %q: %w", c.Logging.Level, err)
	}
	if c.Display.MaxColumnWidth <= 0 {
		return fmt.Errorf("display.max_column_width must be > 0, got %d", c.Display.MaxColumnWidth)
	}
	return nil
}

// Save writes the configuration to ConfigPath, creating the base directory.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if writeErr := os.WriteFile(c.ConfigPath(), data, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write config file: %w", writeErr)
	}
	return nil
}
