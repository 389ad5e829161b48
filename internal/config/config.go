package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Load when no bearer credential is configured.
// Hosts decide how to surface it; Load never aborts the process.
var ErrMissingAPIKey = errors.New("API_KEY not found in configuration")

// Empty query policies accepted by empty_query_policy.
const (
	EmptyQueryIgnore = "ignore"
	EmptyQueryCancel = "cancel"
	EmptyQueryReset  = "reset"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIKey             string        `mapstructure:"api_key"`
	BaseURL            string        `mapstructure:"base_url"`
	Country            string        `mapstructure:"country"`
	UserAgent          string        `mapstructure:"user_agent"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	DebounceMillis   int64         `mapstructure:"debounce_ms"`
	Debounce         time.Duration `mapstructure:"-"`
	MaxQueryLength   int           `mapstructure:"max_query_length"`
	EmptyQueryPolicy string        `mapstructure:"empty_query_policy"`
	ImageOGFallback  bool          `mapstructure:"image_og_fallback"`

	SinksFile             string        `mapstructure:"sinks_file"`
	RelayIntervalSeconds  int64         `mapstructure:"relay_interval"`
	RelayInterval         time.Duration `mapstructure:"-"`
	StorageType           string        `mapstructure:"storage_type"`
	BBoltPath             string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds     int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL            time.Duration `mapstructure:"-"`
	StorageCleanup        time.Duration `mapstructure:"-"`
}

// Load reads configuration from an optional config file, a .env file and the environment.
// The bearer credential is read once here; a missing credential yields ErrMissingAPIKey.
func Load(path string) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-news-reader")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "https://newsapi.org/v2/")
	v.SetDefault("country", "us")
	v.SetDefault("user_agent", "samvad-news-reader/1.0")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("debounce_ms", 1500)
	v.SetDefault("max_query_length", 500)
	v.SetDefault("empty_query_policy", EmptyQueryIgnore)
	v.SetDefault("image_og_fallback", true)
	v.SetDefault("sinks_file", "./configs/sinks.yaml")
	v.SetDefault("relay_interval", 900) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/relay.db")
	v.SetDefault("storage_ttl_seconds", int64((2*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return ErrMissingAPIKey
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return fmt.Errorf("invalid base_url (must not be empty)")
	}
	cfg.Country = strings.ToLower(strings.TrimSpace(cfg.Country))

	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.DebounceMillis <= 0 {
		return fmt.Errorf("invalid debounce_ms (must be positive milliseconds)")
	}
	cfg.Debounce = time.Duration(cfg.DebounceMillis) * time.Millisecond

	if cfg.MaxQueryLength <= 0 {
		return fmt.Errorf("invalid max_query_length (must be positive)")
	}

	cfg.EmptyQueryPolicy = strings.ToLower(strings.TrimSpace(cfg.EmptyQueryPolicy))
	switch cfg.EmptyQueryPolicy {
	case "":
		cfg.EmptyQueryPolicy = EmptyQueryIgnore
	case EmptyQueryIgnore, EmptyQueryCancel, EmptyQueryReset:
	default:
		return fmt.Errorf("invalid empty_query_policy %q (want ignore, cancel or reset)", cfg.EmptyQueryPolicy)
	}

	if cfg.RelayIntervalSeconds <= 0 {
		return fmt.Errorf("invalid relay_interval (must be positive seconds)")
	}
	cfg.RelayInterval = time.Duration(cfg.RelayIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanup = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}

// Redacted returns a copy safe to log.
func (cfg Config) Redacted() Config {
	if cfg.APIKey != "" {
		cfg.APIKey = "***"
	}
	return cfg
}
