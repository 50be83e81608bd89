package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Session persistence backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Session  SessionConfig  `toml:"session"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig contains remote API settings.
type APIConfig struct {
	BaseURL       string  `toml:"base_url"`
	BasePath      string  `toml:"base_path"`
	TimeoutMS     int     `toml:"timeout_ms"`
	AuthScheme    string  `toml:"auth_scheme"`
	RateLimit     float64 `toml:"rate_limit"`
	DefaultAvatar string  `toml:"default_avatar"`
}

// Timeout returns the per-request timeout, falling back to five seconds.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// SessionConfig selects where the session token is persisted.
type SessionConfig struct {
	Store     string `toml:"store"`
	TokenPath string `toml:"token_path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("%w: session.store must be %q or %q, got %q", ErrInvalidConfig, StoreFile, StoreSQLite, c.Session.Store)
	}

	switch c.API.AuthScheme {
	case "", "raw", "bearer":
	default:
		return fmt.Errorf("%w: api.auth_scheme must be \"raw\" or \"bearer\", got %q", ErrInvalidConfig, c.API.AuthScheme)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is empty", ErrInvalidConfig)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv loads envFile (when present) and overrides config values from MELODY_* environment variables.
//
// Variables already set in the process environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if v := os.Getenv("MELODY_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("MELODY_API_BASE_PATH"); v != "" {
		c.API.BasePath = v
	}
	if v := os.Getenv("MELODY_API_AUTH_SCHEME"); v != "" {
		c.API.AuthScheme = v
	}
	if v := os.Getenv("MELODY_API_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MELODY_API_TIMEOUT_MS=%q", ErrInvalidConfig, v)
		}
		c.API.TimeoutMS = ms
	}
	if v := os.Getenv("MELODY_SESSION_STORE"); v != "" {
		c.Session.Store = v
	}
	if v := os.Getenv("MELODY_SESSION_TOKEN_PATH"); v != "" {
		c.Session.TokenPath = v
	}
	if v := os.Getenv("MELODY_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MELODY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	return c.Validate()
}
