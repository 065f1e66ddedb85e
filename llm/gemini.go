package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

const (
	DefaultChatModel      = "gemini-1.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// GeminiGenerator implements Generator on top of the Gemini SDK
type GeminiGenerator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiGenerator creates a generator for the named model
func NewGeminiGenerator(client *genai.Client, model string, logger *zap.Logger) *GeminiGenerator {
	if model == "" {
		model = DefaultChatModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiGenerator{client: client, model: model, logger: logger}
}

// Generate sends messages as a dialogue and returns the reply to the last one
func (g *GeminiGenerator) Generate(ctx context.Context, messages []Message, temperature float32) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}
	last := messages[len(messages)-1]
	chat := g.newChat(messages[:len(messages)-1])
	return chat.Send(ctx, last.Text, temperature)
}

// StartChat opens a dialogue seeded with history
func (g *GeminiGenerator) StartChat(history []Message) Chat {
	return g.newChat(history)
}

func (g *GeminiGenerator) newChat(history []Message) *geminiChat {
	// each chat gets its own model handle so temperatures do not leak across dialogues
	model := g.client.GenerativeModel(g.model)
	session := model.StartChat()
	session.History = toContents(history)
	return &geminiChat{model: model, session: session, logger: g.logger}
}

type geminiChat struct {
	model   *genai.GenerativeModel
	session *genai.ChatSession
	logger  *zap.Logger
}

func (c *geminiChat) Send(ctx context.Context, text string, temperature float32) (string, error) {
	c.model.SetTemperature(temperature)
	resp, err := c.session.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp, c.logger)
}

func toContents(messages []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, &genai.Content{
			Role:  string(m.Role),
			Parts: []genai.Part{genai.Text(m.Text)},
		})
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse, logger *zap.Logger) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("API returned no candidates: %w", ErrEmptyResponse)
	}

	var b strings.Builder
	for i, candidate := range resp.Candidates {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			logger.Warn("candidate finished early",
				zap.Int("candidate", i),
				zap.String("finish_reason", candidate.FinishReason.String()),
			)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		// only the first candidate with text is used
		if b.Len() > 0 {
			break
		}
	}

	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// GeminiEmbedder implements Embedder with a Gemini embedding model
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder for the named model
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &GeminiEmbedder{client: client, model: model}
}

// Embed computes the embedding of text for the given role
func (e *GeminiEmbedder) Embed(ctx context.Context, text string, role EmbedRole, title string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)

	var (
		res *genai.EmbedContentResponse
		err error
	)
	switch role {
	case RoleDocument:
		em.TaskType = genai.TaskTypeRetrievalDocument
		if title != "" {
			res, err = em.EmbedContentWithTitle(ctx, title, genai.Text(text))
		} else {
			res, err = em.EmbedContent(ctx, genai.Text(text))
		}
	default:
		em.TaskType = genai.TaskTypeRetrievalQuery
		res, err = em.EmbedContent(ctx, genai.Text(text))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return res.Embedding.Values, nil
}
