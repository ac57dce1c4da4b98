package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  anthropic.Model(model),
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := anthropic.MessagesRequest{
		Model:     c.model,
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens: maxReplyTokens,
	}
	req.SetTemperature(0)

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	// Only text blocks carry the label; anything else is skipped.
	var texts []string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText {
			texts = append(texts, block.GetText())
		}
	}
	return firstReply("claude", texts...)
}
