package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultBaseURL is the Nexudus Spaces API origin.
const DefaultBaseURL = "https://spaces.nexudus.com"

// Config holds artisans-scripts configuration.
// Loaded from ~/.artisans/config.json with environment variable overrides.
type Config struct {
	// BaseURL is the Nexudus API origin.
	// Env override: ARTISANS_BASE_URL
	BaseURL string `json:"base_url"`

	// Debug enables debug-level logging.
	// Env override: ARTISANS_DEBUG=1
	Debug bool `json:"debug"`

	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	// Env override: LOGLEVEL
	LogLevel string `json:"log_level"`

	// PageSize is the number of records requested per roster page.
	PageSize int `json:"page_size"`

	// MaxPages caps ad-hoc roster fetches. 0 means no cap.
	MaxPages int `json:"max_pages"`

	// Tools maps a tool name to the Nexudus team ID whose membership
	// records tool testedness for that tool.
	// Env override: SHOPBOT_TEAM_ID sets Tools["shopbot"].
	Tools map[string]int64 `json:"tools"`
}

// Dir returns the artisans state directory (~/.artisans).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".artisans"), nil
}

// Load reads configuration from the config file, then applies
// environment variable overrides. Config file locations checked in order:
//  1. ARTISANS_CONFIG env var (if set)
//  2. ~/.artisans/config.json
//
// Missing file is not an error.
func Load() Config {
	cfg := defaults()

	configPath := os.Getenv("ARTISANS_CONFIG")
	if configPath == "" {
		dir, err := Dir()
		if err != nil {
			slog.Warn("Failed to get home directory for config", "error", err)
			applyEnvOverrides(&cfg)
			return cfg
		}
		configPath = filepath.Join(dir, "config.json")
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read config file", "path", configPath, "error", err)
		}
		// No config file — env vars only
		applyEnvOverrides(&cfg)
		return cfg
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("Failed to parse config file", "path", configPath, "error", err)
		// Fall through with defaults + env overrides
	}

	applyEnvOverrides(&cfg)
	return cfg
}

func defaults() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		PageSize: 25,
		MaxPages: 5,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
// Env vars take precedence over config file values.
func applyEnvOverrides(cfg *Config) {
	if os.Getenv("ARTISANS_DEBUG") == "1" {
		cfg.Debug = true
	}

	if url := os.Getenv("ARTISANS_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}

	if level := os.Getenv("LOGLEVEL"); level != "" {
		cfg.LogLevel = level
	}

	// Tool testedness is tracked through team membership. The shopbot
	// team ID predates the tools map and keeps its own env var.
	if raw := os.Getenv("SHOPBOT_TEAM_ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			if cfg.Tools == nil {
				cfg.Tools = make(map[string]int64)
			}
			cfg.Tools["shopbot"] = id
		} else {
			slog.Warn("Ignoring invalid SHOPBOT_TEAM_ID", "value", raw)
		}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 25
	}
}

// ToolTeam returns the team ID mapped to a tool name, or false if the tool
// is not configured.
func (c *Config) ToolTeam(tool string) (int64, bool) {
	id, ok := c.Tools[tool]
	return id, ok
}
