package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChallengeType(t *testing.T) {
	tests := []struct {
		in   string
		want ChallengeType
		ok   bool
	}{
		{"SELECT", TypeSelect, true},
		{"STANDARD", TypeSelect, true},
		{"", TypeSelect, true},
		{"ASSIST", TypeAssist, true},
		{"FILL", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseChallengeType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChallengeTitle(t *testing.T) {
	c := Challenge{Type: TypeSelect, Question: "Which one of these is \"the man\"?"}
	assert.Equal(t, c.Question, c.Title())

	c.Type = TypeAssist
	assert.Equal(t, "Select the correct meaning", c.Title())
}

func TestStatusAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "none", StatusNone.String())
	assert.Equal(t, "correct", StatusCorrect.String())
	assert.Equal(t, "wrong", StatusWrong.String())
	assert.Equal(t, "gated", OutcomeGated.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}
