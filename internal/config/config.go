// Package config provides Viper-based configuration loading for the table server.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds console listener settings.
type TelnetConfig struct {
	Host string `mapstructure:"host"`
	// Port 0 asks the OS for a free port.
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// StorageConfig selects where the saved-character roster lives.
type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend string `mapstructure:"backend"`
	// Key is the key the roster blob is stored under.
	Key string `mapstructure:"key"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. Empty means stderr.
	Output string `mapstructure:"output"`
}

// RulesConfig holds rules content and table defaults.
type RulesConfig struct {
	// SkillsFile is the path of the skill catalog YAML. Empty disables
	// catalog lookups in the console.
	SkillsFile string `mapstructure:"skills_file"`
	// DefaultThreshold is the success floor used when a roll names none.
	DefaultThreshold int `mapstructure:"default_threshold"`
}

// Config is the top-level application configuration.
type Config struct {
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Rules    RulesConfig    `mapstructure:"rules"`
}

// Validate checks every setting and reports all violations at once.
// Database settings are only checked for the postgres backend.
//
// Postcondition: Returns nil if configuration is valid, or an error listing every violation.
func (c Config) Validate() error {
	var p problems

	t := c.Telnet
	p.check(t.Port >= 0 && t.Port <= 65535, "telnet.port must be 0-65535, got %d", t.Port)
	p.check(t.ReadTimeout >= 0, "telnet.read_timeout must not be negative")
	p.check(t.WriteTimeout >= 0, "telnet.write_timeout must not be negative")

	p.oneOf("storage.backend", c.Storage.Backend, BackendMemory, BackendPostgres)
	p.check(strings.TrimSpace(c.Storage.Key) != "", "storage.key must not be empty")

	if c.Storage.Backend == BackendPostgres {
		d := c.Database
		p.check(d.Host != "", "database.host must not be empty")
		p.check(d.Port >= 1 && d.Port <= 65535, "database.port must be 1-65535, got %d", d.Port)
		p.check(d.User != "", "database.user must not be empty")
		p.check(d.Name != "", "database.name must not be empty")
		p.oneOf("database.sslmode", d.SSLMode, "disable", "require", "verify-ca", "verify-full")
		p.check(d.MaxConns >= 1, "database.max_conns must be >= 1, got %d", d.MaxConns)
		p.check(d.MinConns >= 0, "database.min_conns must be >= 0, got %d", d.MinConns)
		p.check(d.MinConns <= d.MaxConns, "database.min_conns must not exceed database.max_conns")
	}

	p.oneOf("logging.level", c.Logging.Level, "debug", "info", "warn", "error")
	p.oneOf("logging.format", c.Logging.Format, "json", "console")

	th := c.Rules.DefaultThreshold
	p.check(th >= 1 && th <= 6, "rules.default_threshold must be 1-6, got %d", th)

	return p.err()
}

// problems accumulates validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p *problems) oneOf(field, got string, allowed ...string) {
	p.check(slices.Contains(allowed, got), "%s must be one of [%s], got %q", field, strings.Join(allowed, ", "), got)
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(p, "; "))
}

// EnvPrefix prefixes environment overrides: SIXTHWORLD_TELNET_PORT sets telnet.port.
const EnvPrefix = "SIXTHWORLD"

// Load reads the YAML file at path over the defaults, applies environment
// overrides, and validates the result.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadFromViper(v)
}

// LoadFromViper decodes and validates whatever v already holds.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4006)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sixthworld")
	v.SetDefault("database.password", "sixthworld")
	v.SetDefault("database.name", "sixthworld")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.key", "shadowrun_characters")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("rules.skills_file", "content/skills.yaml")
	v.SetDefault("rules.default_threshold", 5)
}
