package llm

import (
	"context"

	"lawchat-backend/resilience"
)

// ResilientGenerator retries every call of the wrapped Generator under a policy
type ResilientGenerator struct {
	next   Generator
	policy resilience.Policy
}

// NewResilientGenerator wraps next with policy
func NewResilientGenerator(next Generator, policy resilience.Policy) *ResilientGenerator {
	return &ResilientGenerator{next: next, policy: policy}
}

// Generate implements Generator
func (g *ResilientGenerator) Generate(ctx context.Context, messages []Message, temperature float32) (string, error) {
	return resilience.Do(ctx, g.policy, "generate", func(ctx context.Context) (string, error) {
		return g.next.Generate(ctx, messages, temperature)
	})
}

// StartChat implements Generator. Opening a chat makes no network call;
// only Send is retried
func (g *ResilientGenerator) StartChat(history []Message) Chat {
	return &resilientChat{next: g.next.StartChat(history), policy: g.policy}
}

type resilientChat struct {
	next   Chat
	policy resilience.Policy
}

func (c *resilientChat) Send(ctx context.Context, text string, temperature float32) (string, error) {
	return resilience.Do(ctx, c.policy, "chat_send", func(ctx context.Context) (string, error) {
		return c.next.Send(ctx, text, temperature)
	})
}

// ResilientEmbedder retries every call of the wrapped Embedder under a policy
type ResilientEmbedder struct {
	next   Embedder
	policy resilience.Policy
}

// NewResilientEmbedder wraps next with policy
func NewResilientEmbedder(next Embedder, policy resilience.Policy) *ResilientEmbedder {
	return &ResilientEmbedder{next: next, policy: policy}
}

// Embed implements Embedder
func (e *ResilientEmbedder) Embed(ctx context.Context, text string, role EmbedRole, title string) ([]float32, error) {
	return resilience.Do(ctx, e.policy, "embed", func(ctx context.Context) ([]float32, error) {
		return e.next.Embed(ctx, text, role, title)
	})
}
