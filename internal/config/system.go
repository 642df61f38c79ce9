package config

import (
	"os"
	"strings"
)

// Environment variable names for AI provider overrides. The Gemini key is
// deliberately environment-only: it is the fallback credential and must not
// be editable through the admin surface.
const (
	EnvOpenRouterKey  = "OPENROUTER_API_KEY"
	EnvPreferredModel = "PREFERRED_MODEL"
	EnvAPIBaseURL     = "API_BASE_URL"
	EnvGeminiKey      = "GEMINI_API_KEY"
)

// PlaceholderKeyPrefix is the bare OpenRouter key prefix. A key equal to just
// the prefix is treated the same as an empty key.
const PlaceholderKeyPrefix = "sk-or-v1-"

// DefaultFallbackModel is used when the preferred model carries a provider
// prefix ("vendor/model") and therefore cannot be fed to the Gemini SDK.
const DefaultFallbackModel = "gemini-3-flash-preview"

// SystemConfig is the AI provider configuration visible to administrators.
type SystemConfig struct {
	OpenRouterKey  string `json:"openrouter_key"`
	PreferredModel string `json:"preferred_model"`
	APIBaseURL     string `json:"api_base_url"`
}

// DefaultSystemConfig returns the built-in provider settings. The shared key
// ships with the product and is expected to rotate; the gateway degrades to
// the fallback provider when it expires.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		OpenRouterKey:  "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",
		PreferredModel: "google/gemini-2.0-flash-001",
		APIBaseURL:     "https://openrouter.ai/api/v1",
	}
}

// EnvSystemConfig reads the environment-supplied provider overrides.
func EnvSystemConfig() SystemConfig {
	return SystemConfig{
		OpenRouterKey:  os.Getenv(EnvOpenRouterKey),
		PreferredModel: os.Getenv(EnvPreferredModel),
		APIBaseURL:     os.Getenv(EnvAPIBaseURL),
	}
}

// ResolveSystemConfig merges the three configuration levels field by field:
// a non-empty persisted value wins, then a non-empty environment value, then
// the built-in default. Pure; sanitization happens at call time, not here.
func ResolveSystemConfig(persisted *SystemConfig, env, def SystemConfig) SystemConfig {
	var p SystemConfig
	if persisted != nil {
		p = *persisted
	}
	return SystemConfig{
		OpenRouterKey:  firstNonEmpty(p.OpenRouterKey, env.OpenRouterKey, def.OpenRouterKey),
		PreferredModel: firstNonEmpty(p.PreferredModel, env.PreferredModel, def.PreferredModel),
		APIBaseURL:     firstNonEmpty(p.APIBaseURL, env.APIBaseURL, def.APIBaseURL),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// SanitizeASCII drops every byte outside the printable ASCII range and trims
// surrounding whitespace. HTTP header values only tolerate single-byte
// ASCII, so keys pasted with full-width characters must be cleaned before
// they reach the transport. Idempotent.
func SanitizeASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x20 && s[i] <= 0x7e {
			b.WriteByte(s[i])
		}
	}
	return strings.TrimSpace(b.String())
}

// Sanitized returns a copy of c with all three fields cleaned.
func (c SystemConfig) Sanitized() SystemConfig {
	return SystemConfig{
		OpenRouterKey:  SanitizeASCII(c.OpenRouterKey),
		PreferredModel: SanitizeASCII(c.PreferredModel),
		APIBaseURL:     SanitizeASCII(c.APIBaseURL),
	}
}
