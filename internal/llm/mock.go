package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for tests and offline use.
// Queued responses are returned in FIFO order. With an empty queue a
// request that carries a schema gets a placeholder document built from
// that schema; one without a schema fails as unavailable.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		if req.Schema == nil {
			return nil, &ErrProviderUnavailable{}
		}
		content, err := json.Marshal(placeholder(req.Schema.Definition))
		if err != nil {
			return nil, err
		}
		return &Response{Content: content, Model: "mock", StopReason: "end"}, nil
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// placeholder builds the smallest value satisfying a simple JSON Schema:
// required properties only, first enum value, "mock" for strings.
func placeholder(def map[string]any) any {
	if enum, ok := def["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}
	switch def["type"] {
	case "object":
		out := map[string]any{}
		props, _ := def["properties"].(map[string]any)
		for _, name := range stringList(def["required"]) {
			if p, ok := props[name].(map[string]any); ok {
				out[name] = placeholder(p)
			}
		}
		return out
	case "array":
		return []any{}
	case "integer", "number":
		return 0
	case "boolean":
		return false
	default:
		return "mock"
	}
}

// stringList reads a JSON Schema string array decoded as []any or
// declared in Go as []string.
func stringList(v any) []string {
	switch r := v.(type) {
	case []string:
		return r
	case []any:
		out := make([]string, 0, len(r))
		for _, x := range r {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
