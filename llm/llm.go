// Package llm holds the generation and embedding collaborators used by
// retrieval and conversations, with Gemini-backed implementations
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a model answers with no text
var ErrEmptyResponse = errors.New("model returned empty content")

// Role is the speaker of a message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of a dialogue sent to a generation model
type Message struct {
	Role Role
	Text string
}

// UserMessage builds a user message
func UserMessage(text string) Message { return Message{Role: RoleUser, Text: text} }

// ModelMessage builds a model message
func ModelMessage(text string) Message { return Message{Role: RoleModel, Text: text} }

// Generator produces completions
type Generator interface {
	// Generate answers the last message of messages given the ones before it
	Generate(ctx context.Context, messages []Message, temperature float32) (string, error)
	// StartChat opens a dialogue that retains its own history across Send calls
	StartChat(history []Message) Chat
}

// Chat is a dialogue handle whose state is kept by the model service
type Chat interface {
	Send(ctx context.Context, text string, temperature float32) (string, error)
}

// EmbedRole selects the embedding task
type EmbedRole string

const (
	RoleQuery    EmbedRole = "query"
	RoleDocument EmbedRole = "document"
)

// Embedder computes fixed-length vectors for text. title is only used with RoleDocument
type Embedder interface {
	Embed(ctx context.Context, text string, role EmbedRole, title string) ([]float32, error)
}
