package app

import (
	"gorm.io/gorm"

	"github.com/postpilot/postpilot-backend/internal/data/repos/content"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

type Repos struct {
	Run     content.RunRepo
	Idea    content.IdeaRepo
	Content content.ContentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Run:     content.NewRunRepo(db, log),
		Idea:    content.NewIdeaRepo(db, log),
		Content: content.NewContentRepo(db, log),
	}
}
