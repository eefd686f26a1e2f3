package llm

import (
	"context"
	"encoding/json"
)

// reply is a model's raw output before any schema checks.
type reply struct {
	text      string
	usage     Usage
	model     string
	truncated bool
}

// backend performs one SDK call for a model.
type backend interface {
	send(ctx context.Context, model string, req Request) (reply, error)
}

// Client is a Provider for a hosted model. The backend speaks the vendor
// protocol; Client owns truncation and schema checks so every vendor
// reports them the same way.
type Client struct {
	model   string
	backend backend
}

func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	out, err := c.backend.send(ctx, c.model, req)
	if err != nil {
		return nil, err
	}

	content := json.RawMessage(out.text)
	if out.truncated && req.Schema != nil {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	resp := &Response{
		Content:    content,
		Usage:      out.usage,
		Model:      out.model,
		StopReason: "end",
	}
	if resp.Model == "" {
		resp.Model = c.model
	}
	if out.truncated {
		resp.StopReason = "max_tokens"
	}
	if resp.Usage.TotalTokens == 0 {
		resp.Usage.TotalTokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}
	return resp, nil
}

func (c *Client) ModelID() string {
	return c.model
}
