package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the server looks for its configuration file.
const DefaultPath = "./config/config.yaml"

const placeholderAPIKey = "your_api_key_here"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	TMDB     ProviderConfig `yaml:"tmdb"`
	OMDb     ProviderConfig `yaml:"omdb"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr                   string   `yaml:"addr" validate:"required"`
	CORSAllowedOrigins     []string `yaml:"cors_allowed_origins"`
	ReadTimeoutSeconds     int      `yaml:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds    int      `yaml:"write_timeout_seconds" validate:"gte=0"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds" validate:"gte=0"`
}

// ProviderConfig holds the base URL and API key of a metadata provider
type ProviderConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	APIKey  string `yaml:"api_key" validate:"required"`
}

// UpstreamConfig holds outbound HTTP client settings. Zero TimeoutSeconds,
// MaxAttempts or InitialBackoffMs means the default; negatives are rejected.
type UpstreamConfig struct {
	TimeoutSeconds   int     `yaml:"timeout_seconds" validate:"gt=0"`
	MaxAttempts      int     `yaml:"max_attempts" validate:"gte=1"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" validate:"gte=0"`
	RateLimitRPS     float64 `yaml:"rate_limit_rps" validate:"gte=0"`
}

// CacheConfig holds upstream response cache settings
type CacheConfig struct {
	Enabled              bool   `yaml:"enabled"`
	Backend              string `yaml:"backend" validate:"oneof=sqlite memory"`
	Path                 string `yaml:"path" validate:"required_if=Backend sqlite"`
	Size                 int    `yaml:"size" validate:"gte=0"`
	TTLMinutes           int    `yaml:"ttl_minutes" validate:"gt=0"`
	PruneIntervalMinutes int    `yaml:"prune_interval_minutes" validate:"gte=0"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=auto text json"`
}

// ReadTimeout returns the listener read timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the listener write timeout.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds how long in-flight requests get on shutdown.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// Timeout returns the per-request upstream timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// InitialBackoff returns the delay before the first retry. It is never zero
// once defaults are applied.
func (u UpstreamConfig) InitialBackoff() time.Duration {
	return time.Duration(u.InitialBackoffMs) * time.Millisecond
}

// TTL returns how long cached responses stay valid.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// PruneInterval returns how often expired entries are swept.
func (c CacheConfig) PruneInterval() time.Duration {
	return time.Duration(c.PruneIntervalMinutes) * time.Minute
}

var validate = validator.New()

// LoadEnvFile loads variables from a dotenv file into the process
// environment. A missing file is not an error. Variables already set in
// the environment win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML, expanding environment variables,
// applying defaults and validating the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 5
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 60
	}
	if cfg.Server.ShutdownTimeoutSeconds == 0 {
		cfg.Server.ShutdownTimeoutSeconds = 10
	}

	if cfg.TMDB.BaseURL == "" {
		cfg.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.OMDb.BaseURL == "" {
		cfg.OMDb.BaseURL = "https://www.omdbapi.com/"
	}

	if cfg.Upstream.TimeoutSeconds == 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	if cfg.Upstream.MaxAttempts == 0 {
		cfg.Upstream.MaxAttempts = 1
	}
	if cfg.Upstream.InitialBackoffMs == 0 {
		cfg.Upstream.InitialBackoffMs = 1000
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "sqlite"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "./data/cache.db"
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 1000
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 60
	}
	if cfg.Cache.PruneIntervalMinutes == 0 {
		cfg.Cache.PruneIntervalMinutes = 10
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = "auto"
	}
}

// Validate checks required fields and value ranges.
func (cfg *Config) Validate() error {
	if cfg.TMDB.APIKey == placeholderAPIKey || cfg.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB API key is required. Get one from https://www.themoviedb.org/settings/api")
	}
	if cfg.OMDb.APIKey == placeholderAPIKey || cfg.OMDb.APIKey == "" {
		return fmt.Errorf("OMDb API key is required. Get one from https://www.omdbapi.com/apikey.aspx")
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// expandHome expands a leading ~ to the home directory.
func expandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
