package prompt

import (
	"fmt"
	"strings"
)

// SystemPrompt restricts the model to the supplied context.
const SystemPrompt = "Answer ONLY using the provided context. If the answer is not present, say you don't know."

const chunkMarker = "[CHUNK]\n"

// BuildContext frames each chunk with a [CHUNK] header and separates them by a blank line.
func BuildContext(chunks []string) string {
	framed := make([]string, len(chunks))
	for i, c := range chunks {
		framed[i] = chunkMarker + c
	}
	return strings.Join(framed, "\n\n")
}

// UserMessage embeds the context and the literal question.
func UserMessage(contextText, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer clearly with practical steps or bullets.", contextText, question)
}
