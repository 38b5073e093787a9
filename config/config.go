// Package config loads the planmesh CLI configuration from a file and
// PLANMESH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. PLANMESH_MODEL_PROVIDER for model.provider.
const EnvPrefix = "PLANMESH"

// Config is the CLI configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Model   ModelConfig   `mapstructure:"model"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or text
}

// ModelConfig selects the generative backend for prompt functions.
type ModelConfig struct {
	Provider    string   `mapstructure:"provider"` // openai, anthropic, langchain, mock or "" for none
	Name        string   `mapstructure:"name"`
	APIKey      string   `mapstructure:"api_key"`
	BaseURL     string   `mapstructure:"base_url"`
	Temperature *float64 `mapstructure:"temperature"`
	MaxTokens   *int     `mapstructure:"max_tokens"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address of /metrics; empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// normalize lower-cases the enumerated values.
func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Model.Provider = strings.ToLower(strings.TrimSpace(c.Model.Provider))
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q must be json or text", c.Log.Format)
	}

	switch strings.ToLower(c.Model.Provider) {
	case "", "openai", "anthropic", "langchain", "mock":
	default:
		return fmt.Errorf("model.provider %q must be openai, anthropic, langchain or mock", c.Model.Provider)
	}

	return nil
}

// Load reads the configuration. An empty path searches for planmesh.yaml in
// the working directory and ./config; a missing file then falls back to
// defaults and the environment. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("model.provider", "")
	v.SetDefault("model.name", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.base_url", "")
	v.SetDefault("metrics.addr", "")

	if path == "" {
		v.SetConfigName("planmesh")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Pointer fields have no default, so AutomaticEnv cannot reach them
	// through Unmarshal.
	if v.IsSet("model.temperature") {
		t := v.GetFloat64("model.temperature")
		cfg.Model.Temperature = &t
	}
	if v.IsSet("model.max_tokens") {
		n := v.GetInt("model.max_tokens")
		cfg.Model.MaxTokens = &n
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
