// Package config loads the server configuration from defaults, an optional
// YAML file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cheahjs/leangen/internal/imageapi"
)

type Config struct {
	Port         string `yaml:"port"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Organization string `yaml:"organization"`
	Model        string `yaml:"model"`
	UploadDir    string `yaml:"upload_dir"`
	MaxUploadMB  int    `yaml:"max_upload_mb"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Port:        "3000",
		BaseURL:     imageapi.DefaultBaseURL,
		Model:       imageapi.DefaultModel,
		MaxUploadMB: 50,
		LogLevel:    "info",
		LogFormat:   "console",
	}
}

// Load builds the configuration. path names an optional YAML file; a missing
// .env file is not an error, a missing YAML file given explicitly is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Existing environment variables take precedence over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.APIKey = getEnv("OPENAI_API_KEY", cfg.APIKey)
	cfg.BaseURL = getEnv("OPENAI_BASE_URL", cfg.BaseURL)
	cfg.Organization = getEnv("OPENAI_ORG_ID", cfg.Organization)
	cfg.Model = getEnv("LEANGEN_MODEL", cfg.Model)
	cfg.UploadDir = getEnv("LEANGEN_UPLOAD_DIR", cfg.UploadDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if v := getEnv("LEANGEN_MAX_UPLOAD_MB", ""); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LEANGEN_MAX_UPLOAD_MB %q: %w", v, err)
		}
		cfg.MaxUploadMB = mb
	}
	return nil
}

// Validate reports the first setting that prevents the server from starting.
func (cfg *Config) Validate() error {
	if cfg.APIKey == "" {
		return errors.New("OPENAI_API_KEY environment variable must be set")
	}
	if cfg.Port == "" {
		return errors.New("port must be set")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("invalid port %q", cfg.Port)
	}
	if cfg.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.Model == "" {
		return errors.New("model must be set")
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return nil
}

// MaxUploadBytes is the per-file upload limit.
func (cfg *Config) MaxUploadBytes() int64 {
	return int64(cfg.MaxUploadMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
