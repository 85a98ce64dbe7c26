package app

import (
	httpH "github.com/postpilot/postpilot-backend/internal/http/handlers"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

type Handlers struct {
	Run     *httpH.RunHandler
	Content *httpH.ContentHandler
	Health  *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Run:     httpH.NewRunHandler(serviceset.Workflow, serviceset.Content),
		Content: httpH.NewContentHandler(serviceset.Content),
		Health:  httpH.NewHealthHandler(),
	}
}
