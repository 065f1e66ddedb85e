package handlers

import (
	"net/http"
	"strings"

	"lawchat-backend/corpus"
	"lawchat-backend/retrieval"
	"lawchat-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LawHandler handles HTTP requests for statutes and retrieval
type LawHandler struct {
	corpusService *service.CorpusService
	retriever     service.Retriever
	primaryLaw    string
	logger        *zap.Logger
}

// NewLawHandler creates a new law handler
func NewLawHandler(corpusService *service.CorpusService, retriever service.Retriever, primaryLaw string, logger *zap.Logger) *LawHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LawHandler{
		corpusService: corpusService,
		retriever:     retriever,
		primaryLaw:    primaryLaw,
		logger:        logger,
	}
}

// HeadingView is the JSON shape of a heading
type HeadingView struct {
	Level string `json:"level"`
	Label string `json:"label"`
	Title string `json:"title"`
}

// ContentsResponse is the table of contents of a law
type ContentsResponse struct {
	Law      string        `json:"law"`
	Contents string        `json:"contents"`
	Headings []HeadingView `json:"headings"`
}

// GetContents handles GET /api/laws/:name/contents
func (h *LawHandler) GetContents(c *gin.Context) {
	law, err := h.corpusService.Law(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	headings := corpus.Headings(law)
	views := make([]HeadingView, 0, len(headings))
	for _, hd := range headings {
		views = append(views, HeadingView{Level: hd.Level.String(), Label: hd.Label, Title: hd.Title})
	}
	respondOK(c, http.StatusOK, ContentsResponse{
		Law:      law.Name,
		Contents: corpus.TableOfContents(law),
		Headings: views,
	})
}

// GetArticle handles GET /api/laws/:name/articles/:number
func (h *LawHandler) GetArticle(c *gin.Context) {
	law, err := h.corpusService.Law(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	article, err := corpus.FindArticle(law, c.Param("number"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, articleView(article))
}

// RetrieveRequest represents the request body for a retrieval run
type RetrieveRequest struct {
	Query string `json:"query" binding:"required"`
	Law   string `json:"law"`
}

// Retrieve handles POST /api/retrieve
func (h *LawHandler) Retrieve(c *gin.Context) {
	var req RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	name := strings.TrimSpace(req.Law)
	if name == "" {
		name = h.primaryLaw
	}

	law, err := h.corpusService.Law(c.Request.Context(), name)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	res, err := h.retriever.Retrieve(c.Request.Context(), req.Query, law)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, retrievalView(res))
}

// SearchRequest represents the request body for a similarity search
type SearchRequest struct {
	Query     string   `json:"query" binding:"required"`
	Threshold *float32 `json:"threshold"`
	Limit     int      `json:"limit"`
}

// Search handles POST /api/laws/:name/search
func (h *LawHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	threshold := retrieval.DefaultSimilarityThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	scored, err := h.corpusService.Search(c.Request.Context(), service.SearchRequest{
		LawName:   c.Param("name"),
		Query:     req.Query,
		Threshold: threshold,
		Limit:     req.Limit,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	views := make([]ArticleView, 0, len(scored))
	for _, s := range scored {
		v := articleView(s.Article)
		score := s.Score
		v.Score = &score
		views = append(views, v)
	}
	respondOK(c, http.StatusOK, gin.H{"articles": views})
}
