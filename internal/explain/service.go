// Package explain asks a language model why an answer was right or wrong.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/lingo/internal/llm"
)

// Input describes the answered challenge.
type Input struct {
	Course      string
	ChallengeID int
	Question    string
	Options     []string
	Correct     string

	// Chosen is the learner's pick; equal to Correct after a right answer.
	Chosen string
}

// Explanation is the model's answer.
type Explanation struct {
	Text string
	Tip  string
}

// Config tunes generation.
type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns short, mostly deterministic explanations.
func DefaultConfig() Config {
	return Config{MaxTokens: 400, Temperature: 0.2, Timeout: 30 * time.Second}
}

type cacheKey struct {
	challengeID int
	chosen      string
}

// Service generates explanations and caches them per challenge and chosen
// answer for the life of the process.
type Service struct {
	provider llm.Provider
	cfg      Config

	mu    sync.Mutex
	cache map[cacheKey]*Explanation
}

// NewService creates an explanation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg, cache: make(map[cacheKey]*Explanation)}
}

type explanationOutput struct {
	Explanation string `json:"explanation"`
	Tip         string `json:"tip"`
}

// Explain returns an explanation for in. It blocks on the provider and is
// meant to run off the UI goroutine.
func (s *Service) Explain(ctx context.Context, in Input) (*Explanation, error) {
	key := cacheKey{challengeID: in.ChallengeID, chosen: in.Chosen}
	s.mu.Lock()
	if e, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeExplain)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in)}},
		Schema:      Schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("explanation: %w", err)
	}

	var out explanationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse explanation: %w", err)
	}
	e := &Explanation{
		Text: strings.TrimSpace(out.Explanation),
		Tip:  strings.TrimSpace(out.Tip),
	}

	s.mu.Lock()
	s.cache[key] = e
	s.mu.Unlock()
	return e, nil
}
