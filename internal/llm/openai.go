package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"doc-assistant/internal/prompt"
)

const (
	GroqBaseURL = "https://api.groq.com/openai/v1"

	defaultChatTimeout     = 30 * time.Second
	defaultChatTemperature = 0.2
	defaultModel           = "llama-3.1-8b-instant"
)

// Config selects an OpenAI-compatible chat endpoint.
type Config struct {
	APIKey      string
	BaseURL     string // empty means api.openai.com
	Model       string
	Temperature float64
}

// OpenAIClient calls a Chat Completions endpoint (OpenAI, Groq or compatible).
type OpenAIClient struct {
	model       openai.ChatModel
	temperature float64
	client      *openai.Client
}

// NewOpenAIClient builds a client. Failed calls are not retried.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultChatTemperature
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{
		model:       openai.ChatModel(cfg.Model),
		temperature: cfg.Temperature,
		client:      &cli,
	}, nil
}

func (c *OpenAIClient) Answer(ctx context.Context, question, contextText string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(prompt.SystemPrompt, prompt.UserMessage(contextText, question)),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
