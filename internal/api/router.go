// Package api exposes the download service over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the handlers to their routes
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), CORS())

	router.GET("/", h.Banner)
	router.POST("/download", h.CreateTask)
	router.POST("/download/batch", h.CreateBatch)
	router.GET("/status/:task_id", h.GetStatus)
	router.GET("/tasks", h.ListTasks)
	router.GET("/video/:task_id", h.GetVideo)
	router.GET("/videos", h.ListVideos)
	router.DELETE("/videos/:filename", h.DeleteVideo)
	router.GET("/playlist", h.Playlist)

	return router
}

// CORS allows any origin to call the API. Preflight requests are answered
// here and never reach a handler.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
