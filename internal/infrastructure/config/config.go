package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "KC_CONFIG_FILE"

type Config struct {
	LogLevel    string            `mapstructure:"log_level"`
	Server      ServerConfig      `mapstructure:"server"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Session     SessionConfig     `mapstructure:"session"`
	DemoBackend DemoBackendConfig `mapstructure:"demo_backend"`
	Render      RenderConfig      `mapstructure:"render"`
	OTLP        OTLPConfig        `mapstructure:"otlp"`

	v *viper.Viper
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// BackendConfig points the storefront at the product API
type BackendConfig struct {
	URL         string        `mapstructure:"url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// DemoBackendConfig mounts an in-process product API under /api
type DemoBackendConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type RenderConfig struct {
	Pretty bool `mapstructure:"pretty"`
}

type OTLPConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
}

var defaults = map[string]any{
	"log_level":                  "info",
	"server.host":                "0.0.0.0",
	"server.port":                "8080",
	"server.read_header_timeout": 5 * time.Second,
	"server.shutdown_timeout":    5 * time.Second,
	"backend.url":                "http://localhost:8000",
	"backend.timeout":            time.Duration(0),
	"backend.max_attempts":       1,
	"session.ttl":                30 * time.Minute,
	"demo_backend.enabled":       false,
	"render.pretty":              false,
	"otlp.enabled":               false,
	"otlp.endpoint":              "localhost:4317",
	"otlp.service_name":          "karachi-couture",
	"otlp.environment":           "development",
}

// Environment names kept from the deployment conventions of the service
var envAliases = map[string][]string{
	"backend.url":       {"BACKEND_URL", "VITE_BACKEND_URL"},
	"server.host":       {"SERVER_HOST"},
	"server.port":       {"SERVER_PORT", "PORT"},
	"otlp.endpoint":     {"OTEL_EXPORTER_OTLP_ENDPOINT"},
	"otlp.service_name": {"OTEL_SERVICE_NAME"},
	"otlp.environment":  {"OTEL_ENVIRONMENT"},
}

// LoadConfig loads configuration from defaults, an optional config file,
// environment variables and command line flags, in increasing priority.
func LoadConfig(args []string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	flags := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	configFile := flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("backend-url", "", "product backend base URL")
	flags.String("port", "", "HTTP listen port")
	flags.Bool("demo-backend", false, "serve the demo product API under /api")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	for key, name := range map[string]string{
		"backend.url":          "backend-url",
		"server.port":          "port",
		"demo_backend.enabled": "demo-backend",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	path := *configFile
	if env, ok := os.LookupEnv(configFileEnvName); ok && path == "" {
		path = env
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.v = v
	return &cfg, nil
}

// Validate rejects settings the storefront cannot start with
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q must be an absolute http(s) URL", c.Backend.URL))
	}
	if c.Backend.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("backend.max_attempts must be at least 1, got %d", c.Backend.MaxAttempts))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout must not be negative"))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level parses the configured log level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// WatchLogLevel re-reads log_level whenever the config file is written and
// hands the result to onChange. It reports false when no config file is in use.
func (c *Config) WatchLogLevel(onChange func(slog.Level, error)) bool {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return false
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.v.GetString("log_level"))); err != nil {
			onChange(slog.LevelInfo, fmt.Errorf("invalid log_level in %s: %w", e.Name, err))
			return
		}
		onChange(level, nil)
	})
	c.v.WatchConfig()
	return true
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}
