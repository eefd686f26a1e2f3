package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/lingo/internal/store"
)

type recordingEvents struct {
	mu   sync.Mutex
	llm  []store.LLMRequestEventData
	fail error
}

func (r *recordingEvents) AppendAnswerEvent(context.Context, store.AnswerEventData) error {
	return nil
}

func (r *recordingEvents) AppendSessionEvent(context.Context, store.SessionEventData) error {
	return nil
}

func (r *recordingEvents) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llm = append(r.llm, d)
	return r.fail
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	events := &recordingEvents{}
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, ProviderMock, events, logger)

	ctx := WithPurpose(context.Background(), "explain")
	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events.llm) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.llm))
	}
	got := events.llm[0]
	if !got.Success || got.Purpose != "explain" || got.InputTokens != 12 || got.Provider != ProviderMock {
		t.Errorf("event = %+v", got)
	}
	if !strings.Contains(buf.String(), `"msg":"llm request"`) {
		t.Errorf("expected debug record, got %s", buf.String())
	}
}

func TestLoggingProvider_RecordsFailureAndSurvivesEventError(t *testing.T) {
	events := &recordingEvents{fail: errors.New("disk full")}
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	p := WithLogging(NewMockProvider(), ProviderMock, events, logger)
	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected provider error")
	}

	if len(events.llm) != 1 || events.llm[0].Success || events.llm[0].ErrorMessage == "" {
		t.Errorf("events = %+v", events.llm)
	}
	out := buf.String()
	if !strings.Contains(out, "llm request failed") || !strings.Contains(out, "record llm request event") {
		t.Errorf("expected both warnings, got %s", out)
	}
}

func TestLoggingProvider_NilEvents(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}), ProviderMock, nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock, Retry: retryConfig()}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("model = %q", p.ModelID())
	}
	if _, err := p.Generate(context.Background(), Request{Schema: explainSchema}); err != nil {
		t.Errorf("generate: %v", err)
	}
}

func TestNewProvider_RejectsMissingKey(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: ProviderOpenAI}, nil, nil); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
