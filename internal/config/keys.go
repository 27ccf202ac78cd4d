// Package config provides API key management utilities.
package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no Anthropic API key is configured.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// GetAnthropicKey returns the Anthropic API key, checking the environment
// first and then the configuration.
func GetAnthropicKey(cfg *Config) (string, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}

	if cfg != nil && cfg.Anthropic.APIKey != "" {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// GetSerperKey returns the Serper search API key, or empty when search is
// not configured. A missing search key is not an error; the agent
// degrades to reasoning-only execution.
func GetSerperKey(cfg *Config) string {
	if key := os.Getenv("SERPER_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return cfg.Serper.APIKey
	}
	return ""
}

// ValidateAPIKey performs basic format validation on an Anthropic key.
// It does not verify the key with the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}

	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}

	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}

	return nil
}

// MaskAPIKey returns a masked version of a key for display: the first 7
// and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return key[:2] + strings.Repeat("*", len(key)-2)
	}

	return key[:7] + "..." + key[len(key)-4:]
}
