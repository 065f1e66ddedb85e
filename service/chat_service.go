package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"lawchat-backend/llm"
	"lawchat-backend/models"
	"lawchat-backend/retrieval"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService owns the live conversations, keyed by session id
type ChatService struct {
	lawName     string
	temperature float32
	retriever   Retriever
	laws        retrieval.LawLookup
	generator   llm.Generator
	newID       func() string
	logger      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithLawName sets the statute every session is grounded on
func ChatWithLawName(name string) ChatServiceOption {
	return func(s *ChatService) {
		s.lawName = name
	}
}

// ChatWithTemperature sets the reply temperature
func ChatWithTemperature(t float32) ChatServiceOption {
	return func(s *ChatService) {
		s.temperature = t
	}
}

// ChatWithRetriever sets the retrieval engine
func ChatWithRetriever(r Retriever) ChatServiceOption {
	return func(s *ChatService) {
		s.retriever = r
	}
}

// ChatWithLawLookup sets where the primary law is loaded from
func ChatWithLawLookup(l retrieval.LawLookup) ChatServiceOption {
	return func(s *ChatService) {
		s.laws = l
	}
}

// ChatWithGenerator sets the conversation model
func ChatWithGenerator(g llm.Generator) ChatServiceOption {
	return func(s *ChatService) {
		s.generator = g
	}
}

// ChatWithLogger sets the logger
func ChatWithLogger(logger *zap.Logger) ChatServiceOption {
	return func(s *ChatService) {
		s.logger = logger
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{
		lawName:     "民法",
		temperature: DefaultChatTemperature,
		newID:       func() string { return uuid.New().String() },
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// CreateSession opens a new not-started session
func (s *ChatService) CreateSession() *Session {
	session := NewSession(s.newID(), SessionConfig{
		LawName:     s.lawName,
		Temperature: s.temperature,
		Retriever:   s.retriever,
		Laws:        s.laws,
		Generator:   s.generator,
		Logger:      s.logger,
	})

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	return session
}

// Session returns a live session or models.ErrSessionNotFound
func (s *ChatService) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	return session, nil
}

// SendMessageRequest represents one user message in a session
type SendMessageRequest struct {
	SessionID string
	Message   string
}

// SendMessageResult represents the model's reply
type SendMessageResult struct {
	Reply     string
	State     SessionState
	Mode      retrieval.Mode
	Grounding []*models.Article
}

// SendMessage runs one turn of a session. Turns of the same session are
// serialized; different sessions proceed in parallel
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	session, err := s.Session(req.SessionID)
	if err != nil {
		return nil, err
	}

	turn, err := session.Turn(ctx, req.Message)
	if err != nil {
		return nil, err
	}
	return &SendMessageResult{
		Reply:     turn.Reply,
		State:     turn.State,
		Mode:      turn.Mode,
		Grounding: turn.Grounding,
	}, nil
}

// History returns the visible turns of a session
func (s *ChatService) History(id string) ([]models.Turn, error) {
	session, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	return session.History(), nil
}

// Clear resets a session to not-started
func (s *ChatService) Clear(id string) error {
	session, err := s.Session(id)
	if err != nil {
		return err
	}
	session.Clear()
	return nil
}

// EndSession clears a session and drops it from the registry
func (s *ChatService) EndSession(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	session.Clear()
	s.logger.Debug("session ended", zap.String("session", id))
	return nil
}

// SessionCount returns the number of live sessions
func (s *ChatService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
