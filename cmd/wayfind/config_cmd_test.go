package main

import (
	"testing"

	"github.com/ShayCichocki/wayfind/internal/config"
)

func TestGetConfigValue(t *testing.T) {
	cfg := &config.Config{}
	cfg.Anthropic.Model = "claude-sonnet-4-20250514"
	cfg.Agent.LoopBudget = 7
	cfg.Agent.Temperature = 0.3
	cfg.Agent.Language = "French"

	tests := []struct {
		key  string
		want string
	}{
		{"anthropic.model", "claude-sonnet-4-20250514"},
		{"agent.loop_budget", "7"},
		{"agent.temperature", "0.3"},
		{"agent.language", "French"},
		{"AGENT.LANGUAGE", "French"}, // case-insensitive
		{"anthropic.api_key", "(not set)"},
	}
	for _, tt := range tests {
		got, err := getConfigValue(cfg, tt.key)
		if err != nil {
			t.Fatalf("getConfigValue(%q): %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("getConfigValue(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if _, err := getConfigValue(cfg, "bogus.key"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestGetConfigValueMasksKeys(t *testing.T) {
	cfg := &config.Config{}
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"

	got, err := getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("getConfigValue: %v", err)
	}
	if got == cfg.Anthropic.APIKey {
		t.Fatal("API key printed unmasked")
	}
}
