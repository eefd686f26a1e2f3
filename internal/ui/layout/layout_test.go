package layout

import (
	"strings"
	"testing"

	"charm.land/bubbles/v2/key"
)

func TestHeartsLabel(t *testing.T) {
	if got := (Status{Hearts: 3}).HeartsLabel(); got != "♥ 3" {
		t.Errorf("HeartsLabel = %q, want %q", got, "♥ 3")
	}
	if got := (Status{Hearts: 0, Unlimited: true}).HeartsLabel(); got != "♥ ∞" {
		t.Errorf("HeartsLabel = %q, want %q", got, "♥ ∞")
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Nouns", &Status{Hearts: 4, Points: 30}, 100)
	for _, want := range []string{"Lingo", "Nouns", "♥ 4", "30 pts"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}

	if h := RenderHeader("Courses", nil, 100); strings.Contains(h, "pts") {
		t.Error("header without status should not show points")
	}
}

func TestHintsForSkipsDisabled(t *testing.T) {
	on := key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Check"))
	off := key.NewBinding(key.WithKeys("e"), key.WithHelp("E", "Explain"), key.WithDisabled())

	hints := HintsFor(on, off)
	if len(hints) != 1 {
		t.Fatalf("hints = %d, want 1", len(hints))
	}
	if hints[0].Key != "Enter" || hints[0].Description != "Check" {
		t.Errorf("hint = %+v", hints[0])
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(MinWidth-1, MinHeight) {
		t.Error("expected too small below min width")
	}
	if IsTooSmall(MinWidth, MinHeight) {
		t.Error("min size should fit")
	}
}
