package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/postpilot/postpilot-backend/internal/http/handlers"
	httpMW "github.com/postpilot/postpilot-backend/internal/http/middleware"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	RunHandler     *httpH.RunHandler
	ContentHandler *httpH.ContentHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Runs
		if cfg.RunHandler != nil {
			api.POST("/runs", cfg.RunHandler.StartRun)
			api.GET("/runs", cfg.RunHandler.ListRuns)
			api.GET("/runs/:id", cfg.RunHandler.GetRun)
		}

		// Content
		if cfg.ContentHandler != nil {
			api.GET("/content", cfg.ContentHandler.ListContent)
			api.GET("/content/today", cfg.ContentHandler.TodayContent)
			api.POST("/content/:id/transition", cfg.ContentHandler.Transition)
			api.PUT("/content/:id/body", cfg.ContentHandler.EditBody)
		}
	}

	return r
}
