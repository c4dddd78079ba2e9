package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/example/revise/internal/handlers"
)

// RouterConfig collects the handlers the router mounts.
type RouterConfig struct {
	ReviewHandler *handlers.ReviewHandler
	CardHandler   *handlers.CardHandler
}

// NewRouter builds the gin engine with CORS and the review API routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/review-sessions", cfg.ReviewHandler.StartSession)
		api.POST("/review-sessions/:id/ratings", cfg.ReviewHandler.SubmitRating)
		api.POST("/review-sessions/:id/end", cfg.ReviewHandler.EndSession)
		api.GET("/review-sessions/:id", cfg.ReviewHandler.GetSession)
		api.GET("/cards/:id", cfg.CardHandler.GetCardState)
	}

	return router
}
