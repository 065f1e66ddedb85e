package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the health check and the API routes on r
func RegisterRoutes(r *gin.Engine, chat *ChatHandler, laws *LawHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		// Session endpoints
		api.POST("/sessions", chat.CreateSession)
		api.POST("/sessions/:id/messages", chat.SendMessage)
		api.GET("/sessions/:id/history", chat.GetHistory)
		api.POST("/sessions/:id/clear", chat.ClearSession)
		api.DELETE("/sessions/:id", chat.EndSession)

		// Law endpoints
		api.GET("/laws/:name/contents", laws.GetContents)
		api.GET("/laws/:name/articles/:number", laws.GetArticle)
		api.POST("/laws/:name/search", laws.Search)
		api.POST("/retrieve", laws.Retrieve)
	}
}
