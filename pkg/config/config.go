// Package config resolves runtime settings from flags, environment variables
// and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. HTTPX_MCP_BIND.
const EnvPrefix = "HTTPX_MCP"

const (
	DefaultBind            = "localhost:8989"
	DefaultRoute           = "/mcp"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds all application configuration
type Config struct {
	Bind            string        `mapstructure:"bind" validate:"required"`
	Route           string        `mapstructure:"route" validate:"required,startswith=/"`
	Debug           bool          `mapstructure:"debug"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// viper key -> command line flag
var flagKeys = map[string]string{
	"config":           "config",
	"bind":             "bind",
	"route":            "route",
	"debug":            "debug",
	"max_body_bytes":   "max-body-bytes",
	"shutdown_timeout": "shutdown-timeout",
}

// RegisterFlags adds the configuration flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("bind", DefaultBind, "bind address (host:port)")
	flags.String("route", DefaultRoute, "HTTP route of the MCP endpoint")
	flags.Bool("debug", false, "debug mode")
	flags.Int64("max-body-bytes", DefaultMaxBodyBytes, "maximum accepted request body size")
	flags.Duration("shutdown-timeout", DefaultShutdownTimeout, "graceful shutdown timeout")
}

// New returns a viper instance with defaults and environment overrides set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("bind", DefaultBind)
	v.SetDefault("route", DefaultRoute)
	v.SetDefault("debug", false)
	v.SetDefault("max_body_bytes", DefaultMaxBodyBytes)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the flags registered by RegisterFlags to their keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional config file and returns the validated settings.
func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
