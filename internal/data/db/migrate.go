package db

import (
	types "github.com/postpilot/postpilot-backend/internal/domain"
)

func (s *PostgresService) AutoMigrateAll() error {
	return s.db.AutoMigrate(
		&types.User{},
		&types.PipelineRun{},
		&types.CoreIdea{},
		&types.PlatformContent{},
	)
}
