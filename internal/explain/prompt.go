package explain

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a friendly language tutor. A learner just answered a multiple choice vocabulary question. Explain the answer briefly in English.`

func buildUserMessage(in Input) string {
	var b strings.Builder

	if in.Course != "" {
		fmt.Fprintf(&b, "Course: %s\n", in.Course)
	}
	fmt.Fprintf(&b, "Question: %s\n", in.Question)
	b.WriteString("Options:\n")
	for _, o := range in.Options {
		fmt.Fprintf(&b, "- %s\n", o)
	}
	fmt.Fprintf(&b, "Correct answer: %s\n", in.Correct)
	if in.Chosen != "" && in.Chosen != in.Correct {
		fmt.Fprintf(&b, "Learner chose: %s\n", in.Chosen)
	} else {
		b.WriteString("The learner answered correctly.\n")
	}

	b.WriteString(`
Instructions:
1. Keep the explanation to 2-3 sentences.
2. Mention gender, article or spelling when it is what separates the options.
3. Do not reveal answers to any other question.`)

	return b.String()
}
