package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// anthropicBackend talks to the Anthropic Messages API.
type anthropicBackend struct {
	client *anthropic.Client
}

// NewAnthropicProvider returns a Client for Claude models. A BaseURL in cfg
// redirects the SDK to a proxy.
func NewAnthropicProvider(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// Retries happen in RetryProvider, which also records each attempt.
	opts = append(opts, option.WithMaxRetries(0))
	client := anthropic.NewClient(opts...)

	return &Client{
		model:   resolveModel(cfg.Model, anthropicModels),
		backend: &anthropicBackend{client: &client},
	}, nil
}

func (b *anthropicBackend) send(ctx context.Context, model string, req Request) (reply, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(req.MaxTokens),
	}
	for _, m := range req.Messages {
		turn := anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content))
		if m.Role == RoleAssistant {
			turn = anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content))
		}
		params.Messages = append(params.Messages, turn)
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if !errors.As(err, &apiErr) {
			return reply{}, &ErrProviderUnavailable{Err: err}
		}
		var header http.Header
		if apiErr.Response != nil {
			header = apiErr.Response.Header
		}
		return reply{}, apiFailure(apiErr.StatusCode, header, err)
	}

	out := reply{
		model:     string(msg.Model),
		truncated: msg.StopReason == "max_tokens",
		usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.text = block.Text
			return out, nil
		}
	}
	return reply{}, &ErrInvalidResponse{Err: errors.New("anthropic reply has no text block")}
}
