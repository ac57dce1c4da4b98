package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint,
// which includes ollama.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

// Generate asks for a single-line label. The reply stops at the first
// newline.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: maxReplyTokens,
		Stop:      []string{"\n"},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	texts := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		texts = append(texts, choice.Message.Content)
	}
	return firstReply("openai", texts...)
}
