package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "REMINISCE_"

// Remote backends
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

// Auth modes
const (
	AuthAnonymous = "anonymous"
	AuthStatic    = "static"
	AuthNone      = "none"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Cache   CacheConfig   `toml:"cache" envPrefix:"CACHE_"`
	Remote  RemoteConfig  `toml:"remote" envPrefix:"REMOTE_"`
	Auth    AuthConfig    `toml:"auth" envPrefix:"AUTH_"`
	Server  ServerConfig  `toml:"server" envPrefix:"SERVER_"`
	Catalog CatalogConfig `toml:"catalog" envPrefix:"CATALOG_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
}

// CacheConfig contains local database settings.
type CacheConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// RemoteConfig selects and configures the remote document store.
type RemoteConfig struct {
	Enabled bool          `toml:"enabled" env:"ENABLED"`
	Backend string        `toml:"backend" env:"BACKEND"`
	URL     string        `toml:"url" env:"URL"`
	DSN     string        `toml:"dsn" env:"DSN"`
	Timeout time.Duration `toml:"timeout" env:"TIMEOUT"`
}

// AuthConfig controls how the owner identity is obtained and how tokens are signed.
type AuthConfig struct {
	Mode      string        `toml:"mode" env:"MODE"`
	OwnerID   string        `toml:"owner_id" env:"OWNER_ID"`
	JWTSecret string        `toml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `toml:"token_ttl" env:"TOKEN_TTL"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host" env:"HOST"`
	Port int    `toml:"port" env:"PORT"`
}

// Addr joins host and port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type CatalogConfig struct {
	PublishRate float64 `toml:"publish_rate" env:"PUBLISH_RATE"`
}

type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
}

// Validate reports configuration combinations that cannot work.
func (c *Config) Validate() error {
	if c.Cache.Path == "" {
		return fmt.Errorf("%w: cache.path is empty", ErrInvalidConfig)
	}
	if c.Remote.Enabled {
		switch c.Remote.Backend {
		case BackendHTTP:
			if c.Remote.URL == "" {
				return fmt.Errorf("%w: remote.url is required for the http backend", ErrInvalidConfig)
			}
		case BackendPostgres:
			if c.Remote.DSN == "" {
				return fmt.Errorf("%w: remote.dsn is required for the postgres backend", ErrInvalidConfig)
			}
		case BackendNone:
		default:
			return fmt.Errorf("%w: unknown remote backend %q", ErrInvalidConfig, c.Remote.Backend)
		}
	}
	switch c.Auth.Mode {
	case AuthAnonymous, AuthNone:
	case AuthStatic:
		if c.Auth.OwnerID == "" {
			return fmt.Errorf("%w: auth.owner_id is required in static mode", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown auth mode %q", ErrInvalidConfig, c.Auth.Mode)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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

// ApplyEnv overlays REMINISCE_* environment variables onto config.
func ApplyEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") without
// overriding variables already present in the environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ResolveConfig loads .env, the TOML file at path (falling back to defaults when it
// does not exist), then environment overrides, and validates the result.
func ResolveConfig(path string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	config, err := LoadConfig(path)
	if errors.Is(err, ErrMissingConfig) {
		config = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
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
