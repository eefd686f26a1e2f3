package config

import "time"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	User     UserConfig     `mapstructure:"user"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// DatabaseConfig selects the progress store.
type DatabaseConfig struct {
	// URL is a SQLite file path or a postgres:// connection URL.
	URL string `mapstructure:"url" validate:"required"`
}

// UserConfig identifies the local learner.
type UserConfig struct {
	ID string `mapstructure:"id" validate:"required,max=64,printascii"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	File  string `mapstructure:"file" validate:"required"`
}

// LLMConfig configures the optional explanation provider. An empty
// Provider means the legacy *_API_KEY variables are probed instead.
type LLMConfig struct {
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter mock"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
}
