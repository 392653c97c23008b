package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// REALITYCHECK_SERVER_PORT for server.port.
const EnvPrefix = "REALITYCHECK"

var defaults = map[string]any{
	"server.port":                        8080,
	"server.log_level":                   "info",
	"database.driver":                    DriverSQLite,
	"database.url":                       "realitycheck.db",
	"auth.jwt_secret":                    "",
	"auth.owner_passphrase_hash":         "",
	"auth.owner_id":                      "",
	"auth.token_lifetime_minutes":        60,
	"analytics.streak_grace_period_days": 1,
	"analytics.similar_limit":            5,
}

// Load reads configuration from an optional config.yaml in the working
// directory and from REALITYCHECK_* environment variables, which take
// precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory to search for config.yaml.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
