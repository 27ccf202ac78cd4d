package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/wayfind/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show configuration",
	Long: `View the effective Wayfind configuration.

Without arguments, displays all configuration values.
With one argument (key), displays the value for that key.

Configuration is read from ~/.config/wayfind/config.yaml, with
project-specific overrides from .wayfind.yaml and environment
variables (ANTHROPIC_API_KEY, SERPER_API_KEY) on top.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 1 {
			displayConfigKey(cfg, args[0])
			return
		}
		displayAllConfig(cfg)
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", maskedKeyDisplay(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("serper.api_key: %s\n", maskedKeyDisplay(cfg.Serper.APIKey))
	fmt.Printf("agent.mock: %t\n", cfg.Agent.Mock)
	fmt.Printf("agent.loop_budget: %d\n", cfg.Agent.LoopBudget)
	fmt.Printf("agent.language: %s\n", cfg.Agent.Language)
	fmt.Printf("agent.temperature: %g\n", cfg.Agent.Temperature)
	fmt.Printf("agent.max_tokens: %d\n", cfg.Agent.MaxTokens)
	fmt.Printf("cache.dir: %s\n", cfg.CacheDir())
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return maskedKeyDisplay(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "serper.api_key":
		return maskedKeyDisplay(cfg.Serper.APIKey), nil
	case "agent.mock":
		return strconv.FormatBool(cfg.Agent.Mock), nil
	case "agent.loop_budget":
		return strconv.Itoa(cfg.Agent.LoopBudget), nil
	case "agent.language":
		return cfg.Agent.Language, nil
	case "agent.temperature":
		return strconv.FormatFloat(cfg.Agent.Temperature, 'g', -1, 64), nil
	case "agent.max_tokens":
		return strconv.Itoa(cfg.Agent.MaxTokens), nil
	case "cache.dir":
		return cfg.CacheDir(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

func maskedKeyDisplay(key string) string {
	if key == "" {
		return "(not set)"
	}
	return config.MaskAPIKey(key)
}
