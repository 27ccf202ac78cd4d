package models

// ModelSettings describes which model endpoint and sampling parameters a
// session uses. It is immutable for the lifetime of a session; the caller
// supplies it on every orchestrator call.
type ModelSettings struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-20250514").
	Model string `json:"model"`
	// APIKey is the model provider credential. Empty means use the
	// environment or config-file key.
	APIKey string `json:"-"`
	// Temperature is the sampling temperature (0.0-1.0).
	Temperature float64 `json:"temperature"`
	// MaxTokens is the response token ceiling.
	MaxTokens int `json:"max_tokens"`
	// Language is the output language for all generated text.
	// Empty means English.
	Language string `json:"language,omitempty"`
}

// DefaultMaxTokens is used when MaxTokens is unset.
const DefaultMaxTokens = 1024

// LanguageOrDefault returns the configured output language, defaulting
// to English.
func (s ModelSettings) LanguageOrDefault() string {
	if s.Language == "" {
		return "English"
	}
	return s.Language
}

// TokenCeiling returns MaxTokens, or DefaultMaxTokens when unset.
func (s ModelSettings) TokenCeiling() int {
	if s.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return s.MaxTokens
}
