package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// PresenceConfig tunes how summary rows are flagged.
type PresenceConfig struct {
	// MaxAge is the number of seconds after which a row is considered stale.
	MaxAge int64 `mapstructure:"max_age"`
	// RefreshInterval is how often the collector is expected to update the
	// store, in seconds.
	RefreshInterval int64 `mapstructure:"refresh_interval"`
}

func (p PresenceConfig) MaxAgeDuration() time.Duration {
	return time.Duration(p.MaxAge) * time.Second
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Presence PresenceConfig `mapstructure:"presence"`
}

// DefaultMaxAge is one minute past the collector's refresh period.
const DefaultMaxAge = 11 * 60

// New returns a viper instance with defaults and environment overrides set
// up. Callers may bind flags into it before passing it to Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/rwho.db")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("presence.max_age", DefaultMaxAge)
	v.SetDefault("presence.refresh_interval", 10*60)

	// environment overrides, e.g. RWHO_SERVER_PORT=9000
	v.SetEnvPrefix("RWHO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configuration from the given file path into v. If path is
// empty, "config.yaml" in the working directory is used when present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Presence.MaxAge <= 0 {
		return fmt.Errorf("presence.max_age must be positive, got %d", c.Presence.MaxAge)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is empty")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
