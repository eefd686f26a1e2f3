// Package llm is a thin, provider-neutral layer over hosted language models.
// Callers describe a prompt and an optional JSON Schema; providers return
// JSON validated against that schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured output from a prompt.
type Provider interface {
	// Generate sends req and returns the model's output. When req.Schema is
	// set the Content is JSON that has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for JSON matching it through the
	// provider's native structured output mechanism.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema.
type Schema struct {
	// Name is kebab-case, e.g. "answer-explanation". It doubles as the
	// OpenAI schema name and the validator cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model's output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
