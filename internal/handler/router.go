package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/repochat/internal/middleware"
)

type RouterDeps struct {
	Ingest        *IngestHandler
	Query         *QueryHandler
	Repos         *RepoHandler
	System        *SystemHandler
	RateLimitWait time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.System.Health)
	api.GET("/models", deps.System.Models)

	limited := api.Group("")
	if deps.RateLimitWait > 0 {
		limited.Use(middleware.RateLimit(deps.RateLimitWait))
	}
	limited.POST("/ingest", deps.Ingest.Ingest)
	limited.POST("/query", deps.Query.Query)
	limited.DELETE("/repository", deps.Repos.Delete)
}
