// Package config handles configuration loading and defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/idilsaglam/tada/internal/api"
)

// Default values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultTheme     = "classic"
)

// Color modes for plain output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ConfigFileNames are looked up in the working directory, first match wins.
var ConfigFileNames = []string{"tada.toml", ".tada.toml"}

// Config holds the full configuration for the client.
type Config struct {
	// Todo service
	BaseURL string `toml:"api_url"`

	// Diagnostics
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"` // interactive mode only

	// Plain output
	Theme string `toml:"theme"` // classic, neon, mono
	Color string `toml:"color"` // auto, always, never
	Group bool   `toml:"group"`
}

// Load builds the configuration in priority order:
// 1. Defaults
// 2. Config file (TOML)
// 3. Environment variables
// 4. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path := findConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.BaseURL = api.DefaultBaseURL
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogFile = ""
	cfg.Theme = DefaultTheme
	cfg.Color = ColorAuto
	cfg.Group = false
}

func findConfigFile() string {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TADA_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	// https://no-color.org: any non-empty value disables colour.
	if os.Getenv("NO_COLOR") != "" {
		cfg.Color = ColorNever
	}
	if v := os.Getenv("TADA_COLOR"); v != "" {
		cfg.Color = v
	}
}

// parseFlags registers root flags on fs and parses args. Flags left at their
// zero value do not override earlier layers.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return nil
	}
	apiURL := fs.String("api", "", "Todo service base URL (default "+api.DefaultBaseURL+")")
	logLevel := fs.String("log-level", "", "diagnostic level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "diagnostic format: text, json, logfmt")
	logFile := fs.String("log-file", "", "diagnostic log file for the interactive view")
	theme := fs.String("theme", "", "plain output theme: classic, neon, mono")
	color := fs.String("color", "", "plain output colour: auto, always, never")
	group := fs.Bool("group", false, "group output by pending/done")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *apiURL != "" {
		cfg.BaseURL = *apiURL
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *theme != "" {
		cfg.Theme = *theme
	}
	if *color != "" {
		cfg.Color = *color
	}
	if *group {
		cfg.Group = true
	}
	return nil
}

func validate(cfg *Config) error {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return fmt.Errorf("api_url is empty")
	}
	switch strings.ToLower(cfg.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q", cfg.Theme)
	}
	cfg.Color = strings.ToLower(cfg.Color)
	switch cfg.Color {
	case "":
		cfg.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q", cfg.Color)
	}
	return nil
}
