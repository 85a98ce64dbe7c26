package app

import (
	"github.com/postpilot/postpilot-backend/internal/clients/openai"
	"github.com/postpilot/postpilot-backend/internal/pipeline/dispatch"
	"github.com/postpilot/postpilot-backend/internal/pipeline/ideas"
	"github.com/postpilot/postpilot-backend/internal/pipeline/platform"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
	"github.com/postpilot/postpilot-backend/internal/services"
)

type Services struct {
	Workflow *services.WorkflowService
	Content  *services.ContentService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	ai, err := openai.NewClient(log)
	if err != nil {
		return Services{}, err
	}

	generator := ideas.NewGenerator(log, ai)
	runner := platform.NewRunner(log, ai, cfg.TransformAttempts)
	registry := platform.DefaultRegistry()
	dispatcher := dispatch.NewDispatcher(log, runner, registry, cfg.DispatchMaxInFlight, cfg.TransformTimeout)

	workflow := services.NewWorkflowService(
		log,
		reposet.Run,
		reposet.Idea,
		reposet.Content,
		generator,
		dispatcher,
		services.WorkflowConfig{
			IdeaCount:        cfg.IdeaCount,
			TopicHistoryDays: cfg.TopicHistoryDays,
		},
	)
	contentService := services.NewContentService(log, reposet.Content, reposet.Run, reposet.Idea)

	return Services{
		Workflow: workflow,
		Content:  contentService,
	}, nil
}
