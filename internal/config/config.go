// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"smartjournal/internal/progression"
)

const defaultSQLitePath = "smartjournal.db"

// Config holds every setting the server and CLI read.
type Config struct {
	Port      int    `mapstructure:"port" validate:"gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json console"`

	DBDriver          string        `mapstructure:"db_driver" validate:"oneof=pgx sqlite3"`
	DatabaseURL       string        `mapstructure:"database_url" validate:"required_if=DBDriver pgx"`
	DBMaxOpenConns    int           `mapstructure:"db_max_open_conns" validate:"gte=1"`
	DBConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime" validate:"gte=0"`
	StoreTimeout      time.Duration `mapstructure:"store_timeout" validate:"gt=0"`

	JWTSecret     string        `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	JWTTTL        time.Duration `mapstructure:"jwt_ttl" validate:"gt=0"`
	EncryptionKey string        `mapstructure:"encryption_key" validate:"omitempty,len=64,hexadecimal"`

	StreakRule string `mapstructure:"streak_rule" validate:"oneof=cumulative consecutive"`
	Timezone   string `mapstructure:"timezone" validate:"required"`
}

var defaults = map[string]any{
	"port":                 8080,
	"log_level":            "info",
	"log_format":           "json",
	"db_driver":            "pgx",
	"database_url":         "",
	"db_max_open_conns":    10,
	"db_conn_max_lifetime": 2 * time.Hour,
	"store_timeout":        5 * time.Second,
	"jwt_secret":           "",
	"jwt_ttl":              24 * time.Hour,
	"encryption_key":       "",
	"streak_rule":          string(progression.StreakCumulative),
	"timezone":             "Local",
}

// Load reads .env (if any) and the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadWithFlags(nil, nil)
}

// LoadWithFlags is Load with command-line flags taking precedence over the
// environment when they were set. bindings maps config keys to flag names.
func LoadWithFlags(fs *pflag.FlagSet, bindings map[string]string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			return nil, fmt.Errorf("no flag %q to bind to %s", name, key)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("bind flag %q: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.StreakRule = strings.ToLower(strings.TrimSpace(c.StreakRule))
	if c.DBDriver == "sqlite3" && c.DatabaseURL == "" {
		c.DatabaseURL = defaultSQLitePath
	}
}

var validate = validator.New()

// Validate checks field constraints and that the timezone resolves.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: TIMEZONE: %w", err)
	}
	return nil
}

// ValidateServer adds the checks only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Streak() progression.StreakRule {
	rule, err := progression.ParseStreakRule(c.StreakRule)
	if err != nil {
		return progression.StreakCumulative
	}
	return rule
}
