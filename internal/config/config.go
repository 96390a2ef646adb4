// Package config provides Viper-based hierarchical configuration:
// defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	AI struct {
		// APIKey is the remote credential. An empty key is not an
		// error; it selects the offline, rule-only path.
		APIKey                string `mapstructure:"api_key"`
		Model                 string `mapstructure:"model"`
		TimeoutSeconds        int    `mapstructure:"timeout_seconds"`
		ExtractTimeoutSeconds int    `mapstructure:"extract_timeout_seconds"`
	} `mapstructure:"ai"`

	Rules struct {
		// File points at an optional YAML file with custom keyword
		// rules evaluated before the built-in cascade.
		File string `mapstructure:"file"`
	} `mapstructure:"rules"`
}

// Enabled reports whether the remote model pass is available.
func (c *Config) Enabled() bool {
	return c.AI.APIKey != ""
}

// Load initializes configuration from defaults, an optional config.yaml in
// the working directory or ~/.booksneo, and BOOKSNEO_* environment
// variables. GEMINI_API_KEY is bound unprefixed for parity with other
// Gemini tooling.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.extract_timeout_seconds", 90)
	v.SetDefault("rules.file", "rules.yaml")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.booksneo")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BOOKSNEO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY", "BOOKSNEO_AI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &config, nil
}
