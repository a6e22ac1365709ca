// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

// Package config loads service configuration from defaults, an optional YAML
// file, the environment and command-line flags, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/logging"
)

// EnvPrefix prefixes every environment variable the service reads.
// AUTHSVC_STORE_CONNECT_TIMEOUT sets store.connect_timeout.
const EnvPrefix = "AUTHSVC_"

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	Store   StoreConfig   `koanf:"store"`
	Token   TokenConfig   `koanf:"token"`
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	Reset   ResetConfig   `koanf:"reset"`
}

// StoreConfig selects and locates the user store. Database and Collection
// apply to MongoDB; PostgreSQL uses the table its migrations create.
type StoreConfig struct {
	Driver         string        `koanf:"driver"`
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	Collection     string        `koanf:"collection"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// AutoMigrate applies migrations (PostgreSQL) or creates indexes
	// (MongoDB) when serve starts.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// TokenConfig configures bearer tokens.
type TokenConfig struct {
	Issuer   string        `koanf:"issuer"`
	Audience string        `koanf:"audience"`
	Secret   string        `koanf:"secret"`
	TTL      time.Duration `koanf:"ttl"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr           string   `koanf:"addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// ResetConfig configures password recovery.
type ResetConfig struct {
	// DeliverInResponse returns the recovery token in the forgot response.
	// When false the token is written to the log instead.
	DeliverInResponse bool `koanf:"deliver_in_response"`
}

// Defaults returns the value of every key that has one.
func Defaults() map[string]any {
	return map[string]any{
		"store.driver":              DriverMongo,
		"store.uri":                 "",
		"store.database":            "authsvc",
		"store.collection":          "users",
		"store.connect_timeout":     "10s",
		"store.auto_migrate":        true,
		"token.issuer":              "",
		"token.audience":            "",
		"token.secret":              "",
		"token.ttl":                 auth.DefaultTokenTTL.String(),
		"http.addr":                 ":9090",
		"http.allowed_origins":      []string{},
		"metrics.addr":              "127.0.0.1:9100",
		"log.format":                "json",
		"log.level":                 "info",
		"reset.deliver_in_response": true,
	}
}

// FlagKeys maps command-line flag names to configuration keys. Flags not
// listed here are ignored by Load.
var FlagKeys = map[string]string{
	"store-driver": "store.driver",
	"store-uri":    "store.uri",
	"http-addr":    "http.addr",
	"metrics-addr": "metrics.addr",
	"log-format":   "log.format",
	"log-level":    "log.level",
}

// LoadOptions says where Load reads from.
type LoadOptions struct {
	// File is a YAML file. Empty skips it.
	File string
	// EnvFiles are dotenv files loaded into the process environment before
	// it is read. Missing files are skipped; variables already set win.
	EnvFiles []string
	// Flags are applied last. Only flags the user changed override.
	Flags *pflag.FlagSet
}

// Load builds the configuration. It does not validate it.
func Load(opts LoadOptions) (*Config, error) {
	ko := koanf.New(".")

	for key, value := range Defaults() {
		if err := ko.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	if opts.File != "" {
		if err := ko.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("file", opts.File).Wrap(err)
		}
	}

	for _, path := range opts.EnvFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("env_file", path).Wrap(err)
		}
	}

	if err := ko.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "environment").Wrap(err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithValue(opts.Flags, ".", ko, func(name, value string) (string, any) {
			return FlagKeys[name], value
		})
		if err := ko.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := ko.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}
	return &cfg, nil
}

var envKeys = func() map[string]string {
	keys := make(map[string]string)
	for key := range Defaults() {
		keys[strings.ReplaceAll(key, ".", "_")] = key
	}
	return keys
}()

// envKey maps AUTHSVC_STORE_CONNECT_TIMEOUT to store.connect_timeout.
// Unknown variables are dropped.
func envKey(name, value string) (string, any) {
	key, ok := envKeys[strings.ToLower(strings.TrimPrefix(name, EnvPrefix))]
	if !ok {
		return "", nil
	}
	if key == "http.allowed_origins" {
		return key, splitList(value)
	}
	return key, value
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every problem at once. Required keys with no value are
// listed under "missing".
func (c *Config) Validate() error {
	var missing, problems []string

	switch c.Store.Driver {
	case DriverMongo, DriverPostgres:
		if c.Store.URI == "" {
			missing = append(missing, "store.uri")
		}
	case DriverMemory:
	default:
		problems = append(problems, "store.driver must be one of mongo, postgres, memory")
	}
	if c.Store.Driver == DriverMongo {
		if c.Store.Database == "" {
			missing = append(missing, "store.database")
		}
		if c.Store.Collection == "" {
			missing = append(missing, "store.collection")
		}
	}
	if c.Store.ConnectTimeout <= 0 {
		problems = append(problems, "store.connect_timeout must be positive")
	}

	if c.Token.Issuer == "" {
		missing = append(missing, "token.issuer")
	}
	if c.Token.Audience == "" {
		missing = append(missing, "token.audience")
	}
	if c.Token.Secret == "" {
		missing = append(missing, "token.secret")
	} else if len(c.Token.Secret) < auth.MinSecretLength {
		problems = append(problems, "token.secret must be at least 16 bytes")
	}
	if c.Token.TTL <= 0 {
		problems = append(problems, "token.ttl must be positive")
	}

	if c.HTTP.Addr == "" {
		missing = append(missing, "http.addr")
	}
	if !logging.ValidFormat(c.Log.Format) {
		problems = append(problems, "log.format must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, "log.level must be debug, info, warn or error")
	}

	if len(missing) == 0 && len(problems) == 0 {
		return nil
	}

	msg := []string{}
	if len(missing) > 0 {
		named := make([]string, len(missing))
		for i, key := range missing {
			named[i] = key + " (" + Environ(key) + ")"
		}
		msg = append(msg, "missing required configuration: "+strings.Join(named, ", "))
	}
	msg = append(msg, problems...)
	return oops.Code("CONFIG_INVALID").
		With("missing", missing).
		With("problems", problems).
		Errorf("%s", strings.Join(msg, "; "))
}

// TokenSettings converts the token section for auth.NewTokenIssuer.
func (c *Config) TokenSettings() auth.TokenConfig {
	return auth.TokenConfig{
		Issuer:   c.Token.Issuer,
		Audience: c.Token.Audience,
		Secret:   []byte(c.Token.Secret),
		TTL:      c.Token.TTL,
	}
}

// MetricsEnabled reports whether the observability listener should run.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Addr != ""
}

// Environ returns the environment variable that sets key.
func Environ(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
