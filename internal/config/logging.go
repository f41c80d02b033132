package config

import (
	"path/filepath"

	"github.com/rshade/gss-search/internal/logging"
)

// outputTypeFile is the logging.Config output value for file logging.
const outputTypeFile = logging.OutputFile

// LoggingConfig controls where and how verbosely the tool logs.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// File is the log file path. Empty means <base_dir>/logs/gss-search.log.
	File string `yaml:"file"`
}

// LogFile returns the effective log file path.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.baseDir, "logs", "gss-search.log")
}

// ToLoggingConfig converts the logging section for use with the logging
// package. The interactive selector owns the terminal, so logs go to a file
// unless debug is set, in which case they go to stderr in console format at
// debug level.
func (c *Config) ToLoggingConfig(debug bool) logging.Config {
	if debug {
		return logging.Config{
			Level:  "debug",
			Format: logging.FormatConsole,
			Output: logging.OutputStderr,
		}
	}

	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: outputTypeFile,
		File:   c.LogFile(),
	}
}
