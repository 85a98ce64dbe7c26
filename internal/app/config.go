package app

import (
	"time"

	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
	"github.com/postpilot/postpilot-backend/internal/utils"
)

type Config struct {
	Port string

	IdeaCount           int
	TopicHistoryDays    int
	DispatchMaxInFlight int
	TransformTimeout    time.Duration
	TransformAttempts   int
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	ideaCount := utils.GetEnvAsInt("IDEA_COUNT", 5, log)
	topicHistoryDays := utils.GetEnvAsInt("TOPIC_HISTORY_DAYS", 30, log)
	maxInFlight := utils.GetEnvAsInt("DISPATCH_MAX_INFLIGHT", 15, log)
	transformTimeoutSeconds := utils.GetEnvAsInt("TRANSFORM_TIMEOUT_SECONDS", 30, log)
	transformAttempts := utils.GetEnvAsInt("TRANSFORM_MAX_ATTEMPTS", 3, log)
	return Config{
		Port:                port,
		IdeaCount:           ideaCount,
		TopicHistoryDays:    topicHistoryDays,
		DispatchMaxInFlight: maxInFlight,
		TransformTimeout:    time.Duration(transformTimeoutSeconds) * time.Second,
		TransformAttempts:   transformAttempts,
	}
}
