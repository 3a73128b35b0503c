// Package config loads interpreter settings from the environment.
// Flags given on the command line override every value loaded here.
package config

// Config holds all interpreter configuration.
// All settings can be configured via environment variables.
type Config struct {
	Dialect DialectConfig
	Sheet   SheetConfig
	Logging LoggingConfig
}

// DialectConfig selects the command language version
type DialectConfig struct {
	// Version names a registered dialect, e.g. v1 or 2.0.0 (default: latest)
	Version string `env:"SPS_DIALECT"`

	// MaxSteps overrides the dialect's iteration ceiling when positive
	MaxSteps int `env:"SPS_MAX_STEPS" default:"0"`

	// File is a JSON dialect file deriving a custom dialect
	File string `env:"SPS_DIALECT_FILE"`
}

// SheetConfig holds table file settings
type SheetConfig struct {
	// Delimiters lists the accepted field delimiters; the first one is written (default: space)
	Delimiters string `env:"SPS_DELIMITERS" default:" "`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: warn)
	Level string `env:"SPS_LOG_LEVEL" default:"warn"`

	// Format is text or json (default: text)
	Format string `env:"SPS_LOG_FORMAT" default:"text"`
}
