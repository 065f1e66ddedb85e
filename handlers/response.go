package handlers

import (
	"errors"
	"net/http"

	"lawchat-backend/llm"
	"lawchat-backend/models"
	"lawchat-backend/resilience"
	"lawchat-backend/retrieval"
	"lawchat-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondServiceError maps a service error onto the JSON error envelope
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, models.ErrBlankLawName), errors.Is(err, service.ErrEmptyMessage):
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, resilience.ErrRetryTimeout), errors.Is(err, llm.ErrEmptyResponse):
		logger.Warn("upstream model unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", err.Error())
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

// ArticleView is the JSON shape of an article
type ArticleView struct {
	Law     string   `json:"law"`
	Number  string   `json:"number"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Score   *float32 `json:"score,omitempty"`
}

func articleView(a *models.Article) ArticleView {
	return ArticleView{Law: a.LawName, Number: a.Number, Title: a.Title(), Content: a.Content}
}

func articleViews(articles []*models.Article, scores []float32) []ArticleView {
	views := make([]ArticleView, 0, len(articles))
	for i, a := range articles {
		v := articleView(a)
		if i < len(scores) {
			s := scores[i]
			v.Score = &s
		}
		views = append(views, v)
	}
	return views
}

// ReferencesView is the JSON shape of a classification
type ReferencesView struct {
	Kind    string     `json:"kind"`
	Paths   [][]string `json:"paths,omitempty"`
	Numbers []string   `json:"numbers,omitempty"`
}

func referencesView(refs models.ReferenceSet) ReferencesView {
	v := ReferencesView{Kind: refs.Kind().String(), Numbers: refs.Numbers()}
	for _, p := range refs.Paths() {
		v.Paths = append(v.Paths, []string{p.Part(), p.Chapter(), p.Section(), p.Subsection()})
	}
	return v
}

// RetrievalView is the JSON shape of a retrieval result
type RetrievalView struct {
	Mode       retrieval.Mode `json:"mode"`
	References ReferencesView `json:"references"`
	Articles   []ArticleView  `json:"articles"`
}

func retrievalView(res *retrieval.Result) RetrievalView {
	return RetrievalView{
		Mode:       res.Mode,
		References: referencesView(res.References),
		Articles:   articleViews(res.Articles, res.Scores),
	}
}
