package llm

import "context"

// Client answers a question from a prepared context block.
type Client interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
}
