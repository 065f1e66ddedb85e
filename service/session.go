package service

import (
	"context"
	"fmt"
	"sync"

	"lawchat-backend/llm"
	"lawchat-backend/models"
	"lawchat-backend/retrieval"

	"go.uber.org/zap"
)

// SessionState is the lifecycle state of a conversation
type SessionState string

const (
	SessionNotStarted SessionState = "not_started"
	SessionStarted    SessionState = "started"
)

// DefaultChatTemperature is the sampling temperature of conversation replies
const DefaultChatTemperature float32 = 0.6

// Retriever selects grounding articles for a question
type Retriever interface {
	Retrieve(ctx context.Context, query string, law *models.Law) (*retrieval.Result, error)
}

// SessionConfig holds what a session needs from its owner
type SessionConfig struct {
	LawName     string
	Temperature float32
	Retriever   Retriever
	Laws        retrieval.LawLookup
	Generator   llm.Generator
	Logger      *zap.Logger
}

// Session binds one retrieval result to a multi-turn conversation. Retrieval
// runs once per started lifetime; later turns reach the model through the
// chat handle, which keeps the grounding as part of its own history
type Session struct {
	id  string
	cfg SessionConfig

	mu        sync.Mutex
	state     SessionState
	mode      retrieval.Mode
	grounding []*models.Article
	chat      llm.Chat
	history   []models.Turn
}

// NewSession creates a session in the not-started state
func NewSession(id string, cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Session{id: id, cfg: cfg, state: SessionNotStarted}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// State returns the lifecycle state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start grounds the session on query and answers it. It does nothing when the
// session has already started
func (s *Session) Start(ctx context.Context, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionStarted {
		return nil
	}
	_, err := s.start(ctx, query)
	return err
}

// TurnResult is a reply together with the session state it was produced in
type TurnResult struct {
	Reply     string
	State     SessionState
	Mode      retrieval.Mode
	Grounding []*models.Article
}

// Turn answers query, starting the session first when needed. The result is
// taken under the same lock as the reply, so a concurrent Clear cannot split it
func (s *Session) Turn(ctx context.Context, query string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		reply string
		err   error
	)
	if s.state == SessionNotStarted {
		reply, err = s.start(ctx, query)
	} else {
		reply, err = s.chat.Send(ctx, query, s.cfg.Temperature)
		if err != nil {
			err = fmt.Errorf("failed to send message: %w", err)
		} else {
			s.history = append(s.history, models.Turn{User: query, Response: reply})
		}
	}
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Reply:     reply,
		State:     s.state,
		Mode:      s.mode,
		Grounding: append([]*models.Article(nil), s.grounding...),
	}, nil
}

func (s *Session) start(ctx context.Context, query string) (string, error) {
	log := s.cfg.Logger.With(zap.String("session", s.id))

	mode, articles := s.retrieve(ctx, query, log)
	prompt := groundingPrompt(s.cfg.LawName, articles)

	chat := s.cfg.Generator.StartChat([]llm.Message{
		llm.UserMessage(prompt),
		llm.ModelMessage(groundingAck),
	})
	reply, err := chat.Send(ctx, query, s.cfg.Temperature)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	s.state = SessionStarted
	s.mode = mode
	s.grounding = articles
	s.chat = chat
	s.history = []models.Turn{
		{User: prompt, Response: groundingAck},
		{User: query, Response: reply},
	}
	log.Info("session started",
		zap.String("mode", string(mode)),
		zap.Int("grounding_articles", len(articles)),
	)
	return reply, nil
}

// retrieve never fails: a missing law or a failed retrieval grounds the
// session on the no-data marker
func (s *Session) retrieve(ctx context.Context, query string, log *zap.Logger) (retrieval.Mode, []*models.Article) {
	if s.cfg.Retriever == nil || s.cfg.Laws == nil {
		return retrieval.ModeOutOfDomain, nil
	}
	law, err := s.cfg.Laws.Law(ctx, s.cfg.LawName)
	if err != nil {
		log.Error("failed to load primary law", zap.String("law", s.cfg.LawName), zap.Error(err))
		return retrieval.ModeOutOfDomain, nil
	}
	res, err := s.cfg.Retriever.Retrieve(ctx, query, law)
	if err != nil {
		log.Error("retrieval failed", zap.Error(err))
		return retrieval.ModeOutOfDomain, nil
	}
	if res.OutOfDomain() {
		return res.Mode, nil
	}
	return res.Mode, res.Articles
}

// Clear discards the grounding and the history
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionNotStarted
	s.mode = ""
	s.grounding = nil
	s.chat = nil
	s.history = nil
}

// Grounding returns the frozen grounding articles and the retrieval mode
// that chose them
func (s *Session) Grounding() (retrieval.Mode, []*models.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, append([]*models.Article(nil), s.grounding...)
}

// History returns the user/response pairs, leaving out the grounding exchange
func (s *Session) History() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) <= 1 {
		return []models.Turn{}
	}
	return append([]models.Turn(nil), s.history[1:]...)
}
