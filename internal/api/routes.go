package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. metricsHandler serves the Prometheus
// scrape endpoint and may be nil.
func SetupRoutes(router *gin.Engine, handler *Handler, metricsHandler http.Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// On-demand audit endpoints
		audit := v1.Group("/audit")
		{
			audit.POST("/videos/:id", handler.AuditVideo)     // POST /api/v1/audit/videos/:id
			audit.POST("/channels/:id", handler.AuditChannel) // POST /api/v1/audit/channels/:id
		}

		// Keyword rule management
		keywords := v1.Group("/keywords")
		{
			keywords.GET("", handler.ListKeywords)         // GET /api/v1/keywords
			keywords.POST("", handler.CreateKeyword)       // POST /api/v1/keywords
			keywords.DELETE("/:id", handler.DeleteKeyword) // DELETE /api/v1/keywords/:id
		}

		v1.GET("/categories", handler.ListCategories) // GET /api/v1/categories
		v1.GET("/stats", handler.GetStats)            // GET /api/v1/stats
	}
}
