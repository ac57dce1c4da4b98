package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	m.SetMaxOutputTokens(maxReplyTokens)
	m.SetCandidateCount(1)

	return &GeminiClient{client: client, model: m}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return firstReply("gemini", geminiTexts(resp)...)
}

func geminiTexts(resp *genai.GenerateContentResponse) []string {
	var texts []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				texts = append(texts, string(txt))
			}
		}
	}
	return texts
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
