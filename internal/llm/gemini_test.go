package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string", "description": "why"},
			"level":       map[string]any{"type": "string", "enum": []string{"easy", "hard"}},
			"tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"score":       map[string]any{"type": "mystery"},
		},
		"required": []string{"explanation"},
	})

	if s.Type != genai.TypeObject {
		t.Fatalf("type = %v, want object", s.Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "explanation" {
		t.Errorf("required = %v", s.Required)
	}
	if got := s.Properties["explanation"]; got.Description != "why" || got.Type != genai.TypeString {
		t.Errorf("explanation = %+v", got)
	}
	if got := s.Properties["level"].Enum; len(got) != 2 {
		t.Errorf("enum = %v", got)
	}
	if got := s.Properties["tags"]; got.Type != genai.TypeArray || got.Items.Type != genai.TypeString {
		t.Errorf("tags = %+v", got)
	}
	if got := s.Properties["score"].Type; got != genai.TypeString {
		t.Errorf("unknown type maps to %v, want string", got)
	}
}
