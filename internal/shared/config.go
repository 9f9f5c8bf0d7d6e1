package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from config.toml.
const (
	EnvAccessToken = "MVX_TMDB_TOKEN"
	EnvDBPath      = "MVX_DB_PATH"
	EnvServerPort  = "MVX_PORT"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	TMDB     TMDBConfig     `toml:"tmdb"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	UI       UIConfig       `toml:"ui"`
}

// TMDBConfig contains settings for the movie metadata API.
type TMDBConfig struct {
	APIBase     string   `toml:"api_base"`
	ImageBase   string   `toml:"image_base"`
	Language    string   `toml:"language"`
	AccessToken string   `toml:"access_token"`
	RateLimit   float64  `toml:"rate_limit"`
	Burst       int      `toml:"burst"`
	Timeout     Duration `toml:"timeout"`
	CacheTTL    Duration `toml:"cache_ttl"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host       string   `toml:"host"`
	Port       int      `toml:"port"`
	SessionTTL Duration `toml:"session_ttl"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	LogPath string `toml:"log_path"`
}

// Duration wraps [time.Duration] so it can be written as "15s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values absent from the file keep their defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
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

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv reads KEY=VALUE pairs from the given .env files into the process environment.
//
// Missing files are ignored; existing environment variables are never overwritten.
func LoadEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// ApplyEnv overrides config values from the environment.
func (c *Config) ApplyEnv() error {
	if tok := os.Getenv(EnvAccessToken); tok != "" {
		c.TMDB.AccessToken = tok
	}
	if path := os.Getenv(EnvDBPath); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv(EnvServerPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvServerPort, port)
		}
		c.Server.Port = p
	}
	return nil
}
