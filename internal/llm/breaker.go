package llm

import (
	"context"

	"github.com/agenthands/twohop/internal/breaker"
)

// BreakerClient guards another client with a circuit breaker so a dead
// provider is skipped immediately instead of timing out on every request.
type BreakerClient struct {
	inner LLMClient
	cb    *breaker.Breaker[string]
}

func NewBreakerClient(inner LLMClient, name string) *BreakerClient {
	return &BreakerClient{
		inner: inner,
		cb:    breaker.New[string](name),
	}
}

func (c *BreakerClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.cb.Execute(func() (string, error) {
		return c.inner.Generate(ctx, prompt)
	})
}
