package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

// chatBackend speaks the OpenAI chat completions protocol, which OpenAI and
// OpenRouter share.
type chatBackend struct {
	client *openai.Client
}

// NewOpenAIProvider returns a Client for OpenAI chat models, or for any
// compatible endpoint named by cfg.BaseURL.
func NewOpenAIProvider(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Provider)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return newChatClient(clientCfg, resolveModel(cfg.Model, openaiModels)), nil
}

func newChatClient(clientCfg openai.ClientConfig, model string) *Client {
	return &Client{
		model:   model,
		backend: &chatBackend{client: openai.NewClientWithConfig(clientCfg)},
	}
}

func (b *chatBackend) send(ctx context.Context, model string, req Request) (reply, error) {
	chat := openai.ChatCompletionRequest{
		Model:               model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return reply{}, fmt.Errorf("encode schema %q: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return reply{}, apiFailure(apiErr.HTTPStatusCode, nil, err)
		}
		return reply{}, &ErrProviderUnavailable{Err: err}
	}
	if len(resp.Choices) == 0 {
		return reply{}, &ErrInvalidResponse{Err: errors.New("chat completion has no choices")}
	}

	choice := resp.Choices[0]
	return reply{
		text:      choice.Message.Content,
		model:     resp.Model,
		truncated: choice.FinishReason == openai.FinishReasonLength,
		usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}
