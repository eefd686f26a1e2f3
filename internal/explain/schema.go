package explain

import "github.com/abhisek/lingo/internal/llm"

// Schema is the structured output contract for explanations.
var Schema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Why an answer to a vocabulary question is right or wrong",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "2-3 sentences on why the correct answer is correct and, if the learner was wrong, why their pick is not",
			},
			"tip": map[string]any{
				"type":        "string",
				"description": "One short memory aid for the correct answer",
			},
		},
		"required":             []any{"explanation", "tip"},
		"additionalProperties": false,
	},
}
