package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// openRouterApp identifies lingo in OpenRouter's usage rankings.
const openRouterApp = "lingo"

// NewOpenRouterProvider returns a Client that routes through OpenRouter.
// Model names pass through untouched ("vendor/model").
func NewOpenRouterProvider(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = defaultOpenRouterBaseURL
	}
	clientCfg.HTTPClient = &http.Client{Transport: attribution{next: http.DefaultTransport}}
	return newChatClient(clientCfg, cfg.Model), nil
}

// attribution adds OpenRouter's optional app headers to every request.
type attribution struct {
	next http.RoundTripper
}

func (a attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", openRouterApp)
	r.Header.Set("HTTP-Referer", "https://github.com/abhisek/lingo")
	return a.next.RoundTrip(r)
}
