package app

import (
	"github.com/gin-gonic/gin"

	httpServer "github.com/postpilot/postpilot-backend/internal/http"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers) *gin.Engine {
	log.Info("Wiring router...")
	return httpServer.NewRouter(httpServer.RouterConfig{
		Log:            log,
		RunHandler:     handlerset.Run,
		ContentHandler: handlerset.Content,
		HealthHandler:  handlerset.Health,
	})
}
