package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyReply is returned when a provider answers without any usable text.
var ErrEmptyReply = errors.New("llm: empty reply")

// LLMClient sends one prompt and returns the model's text reply.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// firstReply returns the first non-blank text, trimmed.
func firstReply(provider string, texts ...string) (string, error) {
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			return t, nil
		}
	}
	return "", fmt.Errorf("%s: %w", provider, ErrEmptyReply)
}
