package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

// geminiBackend talks to the Gemini API through the genai SDK.
type geminiBackend struct {
	client *genai.Client
}

// NewGeminiProvider returns a Client for Gemini models.
func NewGeminiProvider(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		model:   resolveModel(cfg.Model, geminiModels),
		backend: &geminiBackend{client: client},
	}, nil
}

func (b *geminiBackend) send(ctx context.Context, model string, req Request) (reply, error) {
	gen := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		gen.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		gen.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		gen.ResponseMIMEType = "application/json"
		gen.ResponseSchema = geminiSchema(req.Schema.Definition)
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	result, err := b.client.Models.GenerateContent(ctx, model, contents, gen)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return reply{}, apiFailure(apiErr.Code, nil, err)
		}
		return reply{}, &ErrProviderUnavailable{Err: err}
	}

	out := reply{text: result.Text(), model: result.ModelVersion}
	if len(result.Candidates) > 0 {
		out.truncated = result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens
	}
	if u := result.UsageMetadata; u != nil {
		out.usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return out, nil
}

// geminiSchema converts a JSON Schema map to the subset genai understands.
// Unknown keywords are dropped; the response is still validated against
// the full schema afterwards.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{
		Type:     geminiTypes[stringField(def, "type")],
		Required: stringList(def["required"]),
		Enum:     stringList(def["enum"]),
	}
	if s.Type == "" {
		s.Type = genai.TypeString
	}
	s.Description = stringField(def, "description")

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]any); ok {
				s.Properties[name] = geminiSchema(sub)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	return s
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

func stringField(def map[string]any, key string) string {
	s, _ := def[key].(string)
	return s
}
