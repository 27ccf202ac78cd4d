// Package config handles configuration loading and management for Wayfind.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
)

// Built-in defaults, also spelled out by 'wayfind init'.
const (
	DefaultModel       = "claude-sonnet-4-20250514"
	DefaultLoopBudget  = 5
	DefaultLanguage    = "English"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// Config holds all configuration for Wayfind.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Serper    SerperConfig    `mapstructure:"serper"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// AnthropicConfig holds model provider settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// UseAWSBedrock routes model calls through AWS Bedrock.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// SerperConfig holds web-search provider settings. An empty key disables
// search; the agent then answers search-routed tasks from reasoning.
type SerperConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// AgentConfig holds session loop settings.
type AgentConfig struct {
	// Mock selects the canned offline orchestrator.
	Mock bool `mapstructure:"mock"`
	// LoopBudget is the maximum number of executed tasks per session.
	LoopBudget int `mapstructure:"loop_budget"`
	// Language is the output language for generated text.
	Language string `mapstructure:"language"`
	// Temperature is the model sampling temperature.
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokens is the per-completion token ceiling.
	MaxTokens int `mapstructure:"max_tokens"`
}

// CacheConfig holds response-cache settings.
type CacheConfig struct {
	// Dir overrides the cache data directory. Empty uses the XDG default.
	Dir string `mapstructure:"dir"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, SERPER_API_KEY)
// 2. Project config (.wayfind.yaml in current directory or a parent)
// 3. User config (~/.config/wayfind/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("serper.api_key", "SERPER_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Serper.APIKey = expandEnv(cfg.Serper.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Serper.APIKey = expandEnv(cfg.Serper.APIKey)

	return cfg, nil
}

// CacheDir returns the cache data directory, honoring the override.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(getUserDataDir(), "cache")
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", DefaultModel)
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("serper.api_key", "")

	v.SetDefault("agent.mock", false)
	v.SetDefault("agent.loop_budget", DefaultLoopBudget)
	v.SetDefault("agent.language", DefaultLanguage)
	v.SetDefault("agent.temperature", DefaultTemperature)
	v.SetDefault("agent.max_tokens", DefaultMaxTokens)

	v.SetDefault("cache.dir", "")
}

// getUserConfigDir returns the XDG config directory for Wayfind.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "wayfind")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "wayfind")
	}
	return filepath.Join(home, ".config", "wayfind")
}

// getUserDataDir returns the XDG data directory for Wayfind.
func getUserDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "wayfind")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "wayfind")
	}
	return filepath.Join(home, ".local", "share", "wayfind")
}

// findProjectConfig searches for .wayfind.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".wayfind.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

var envRefPattern = regexp.MustCompile(`^\$\{[A-Z0-9_]+\}$`)

// expandEnv expands ${VAR} references, treating unresolved references as
// empty rather than leaving the literal placeholder in place.
func expandEnv(s string) string {
	expanded := os.ExpandEnv(s)
	if envRefPattern.MatchString(expanded) {
		return ""
	}
	return expanded
}
