package handlers

import (
	"net/http"

	"lawchat-backend/retrieval"
	"lawchat-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatHandler handles HTTP requests for conversations
type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{chatService: chatService, logger: logger}
}

// SessionView is the JSON shape of a session
type SessionView struct {
	SessionID string               `json:"session_id"`
	State     service.SessionState `json:"state"`
}

// sessionID reads and validates the :id path parameter
func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_SESSION_ID", "Invalid session id format")
		return "", false
	}
	return id, true
}

// CreateSession handles POST /api/sessions
func (h *ChatHandler) CreateSession(c *gin.Context) {
	session := h.chatService.CreateSession()
	respondOK(c, http.StatusCreated, SessionView{SessionID: session.ID(), State: session.State()})
}

// SendMessageRequest represents the request body for one user message
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessageResponse represents the reply to one user message
type SendMessageResponse struct {
	Reply     string               `json:"reply"`
	State     service.SessionState `json:"state"`
	Mode      retrieval.Mode       `json:"mode"`
	Grounding []ArticleView        `json:"grounding"`
}

// SendMessage handles POST /api/sessions/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), service.SendMessageRequest{
		SessionID: id,
		Message:   req.Message,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, SendMessageResponse{
		Reply:     result.Reply,
		State:     result.State,
		Mode:      result.Mode,
		Grounding: articleViews(result.Grounding, nil),
	})
}

// GetHistory handles GET /api/sessions/:id/history
func (h *ChatHandler) GetHistory(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	turns, err := h.chatService.History(id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"turns": turns})
}

// ClearSession handles POST /api/sessions/:id/clear
func (h *ChatHandler) ClearSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.chatService.Clear(id); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, SessionView{SessionID: id, State: service.SessionNotStarted})
}

// EndSession handles DELETE /api/sessions/:id
func (h *ChatHandler) EndSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.chatService.EndSession(id); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
