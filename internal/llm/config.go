package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/abhisek/lingo/internal/config"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// defaultModels is used when no model is configured.
var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-exp",
	ProviderMock:       "mock",
}

// legacyKeys lists the conventional API key variables in probe order.
var legacyKeys = []struct {
	env      string
	provider string
}{
	{"GEMINI_API_KEY", ProviderGemini},
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// Config selects and configures one provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
	Retry   RetryConfig
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetry is three attempts with exponential backoff from one second.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Second,
		MaxWait:     10 * time.Second,
		Multiplier:  2.0,
	}
}

// Resolve builds a Config from application settings. When no provider is
// configured the conventional *_API_KEY variables are probed instead; ok is
// false when neither yields a provider.
func Resolve(s config.LLMConfig) (cfg Config, ok bool) {
	cfg = Config{
		Provider: s.Provider,
		APIKey:   s.APIKey,
		Model:    s.Model,
		BaseURL:  s.BaseURL,
		Timeout:  s.Timeout,
		Retry:    DefaultRetry(),
	}
	if cfg.Provider == "" {
		provider, key, found := discover(os.Getenv)
		if !found {
			return Config{}, false
		}
		cfg.Provider, cfg.APIKey = provider, key
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}
	if cfg.Provider == ProviderOpenRouter && cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg, true
}

func discover(getenv func(string) string) (provider, key string, ok bool) {
	for _, k := range legacyKeys {
		if v := getenv(k.env); v != "" {
			return k.provider, v, true
		}
	}
	return "", "", false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.APIKey == "" {
			return fmt.Errorf("an API key is required for the %s provider (set LINGO_LLM_API_KEY)", c.Provider)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so direct model IDs work.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
