// Package config loads fcard settings from defaults, an optional config file
// and FCARD_ environment variables.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Page        PageConfig        `mapstructure:"page"`
	Store       StoreConfig       `mapstructure:"store"`
	Practice    PracticeConfig    `mapstructure:"practice"`
	Environment EnvironmentConfig `mapstructure:"environment"`
	// Debug shows diagnostics and renders panics instead of failing silently.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig contains the HTTP listener and logging settings.
type ServerConfig struct {
	Addr      string `mapstructure:"addr" validate:"required,hostname_port"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=text json"`
}

// PageConfig describes the page being enhanced.
type PageConfig struct {
	// Location is an http(s) URL or a file path.
	Location string `mapstructure:"location"`
	// Language overrides the page's lang attribute for message selection.
	Language     string        `mapstructure:"language"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// StoreConfig points at the deck archive.
type StoreConfig struct {
	Path     string `mapstructure:"path"`
	SourceID int64  `mapstructure:"source_id" validate:"gte=0"`
}

// PracticeConfig tunes the practice session.
type PracticeConfig struct {
	// Readings annotates Japanese answers with kana.
	Readings bool `mapstructure:"readings"`
	// Seed fixes the question order; 0 picks a fresh seed per session.
	Seed int64 `mapstructure:"seed"`
}

// EnvironmentConfig declares what the rendering target lacks.
type EnvironmentConfig struct {
	Missing []string `mapstructure:"missing"`
	Emoji   bool     `mapstructure:"emoji"`
}
