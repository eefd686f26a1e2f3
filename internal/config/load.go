package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LINGO_DATABASE_URL.
const EnvPrefix = "LINGO"

var validate = validator.New()

// Load reads configuration from defaults, an optional YAML file and LINGO_*
// environment variables, in increasing order of precedence.
//
// When path is empty, $XDG_CONFIG_HOME/lingo/config.yaml is read if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(configDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsPostgres reports whether the database URL points at a Postgres server.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", filepath.Join(dataDir(), "lingo.db"))
	v.SetDefault("user.id", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(stateDir(), "lingo.log"))
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 30*time.Second)
}

// dataDir resolves $XDG_DATA_HOME/lingo, falling back to ~/.local/share/lingo.
func dataDir() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// stateDir resolves $XDG_STATE_HOME/lingo, falling back to ~/.local/state/lingo.
func stateDir() string {
	return xdgDir("XDG_STATE_HOME", ".local", "state")
}

// configDir resolves $XDG_CONFIG_HOME/lingo, falling back to ~/.config/lingo.
func configDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

func xdgDir(env string, fallback ...string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, "lingo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, "lingo")...)
}
