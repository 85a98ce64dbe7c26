package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/postpilot/postpilot-backend/internal/data/repos/content"
	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pipeline/dispatch"
	"github.com/postpilot/postpilot-backend/internal/pipeline/ideas"
	"github.com/postpilot/postpilot-backend/internal/pipeline/platform"
	"github.com/postpilot/postpilot-backend/internal/pkg/dbctx"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

// ErrRunInProgress rejects a second concurrent run for the same user.
var ErrRunInProgress = errors.New("a pipeline run is already in progress for this user")

// IdeaGenerator produces a deduplicated idea batch. Nothing is persisted by
// the generator itself.
type IdeaGenerator interface {
	Generate(ctx context.Context, count int, excludedTopics []string) ([]ideas.Candidate, error)
}

// ContentDispatcher fans ideas out across platforms and reports every task.
type ContentDispatcher interface {
	Dispatch(ctx context.Context, batch []*types.CoreIdea) []dispatch.Outcome
}

// WorkflowConfig carries the per-run knobs.
type WorkflowConfig struct {
	IdeaCount        int
	TopicHistoryDays int
}

// runErrorEntry is one element of the run's error_summary column.
type runErrorEntry struct {
	Stage    string `json:"stage"`
	IdeaID   string `json:"idea_id,omitempty"`
	Platform string `json:"platform,omitempty"`
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts,omitempty"`
}

// WorkflowService is the pipeline orchestrator: it owns the run record and is
// the only writer of run status.
type WorkflowService struct {
	log        *logger.Logger
	runs       content.RunRepo
	ideas      content.IdeaRepo
	contents   content.ContentRepo
	generator  IdeaGenerator
	dispatcher ContentDispatcher
	cfg        WorkflowConfig
}

func NewWorkflowService(
	baseLog *logger.Logger,
	runs content.RunRepo,
	ideaRepo content.IdeaRepo,
	contents content.ContentRepo,
	generator IdeaGenerator,
	dispatcher ContentDispatcher,
	cfg WorkflowConfig,
) *WorkflowService {
	if cfg.IdeaCount < ideas.MinIdeas || cfg.IdeaCount > ideas.MaxIdeas {
		cfg.IdeaCount = ideas.MaxIdeas
	}
	if cfg.TopicHistoryDays <= 0 {
		cfg.TopicHistoryDays = 30
	}
	return &WorkflowService{
		log:        baseLog.With("service", "WorkflowService"),
		runs:       runs,
		ideas:      ideaRepo,
		contents:   contents,
		generator:  generator,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

// Run executes one full pipeline pass for the user and returns the finished
// run record. Pipeline failures are recorded on the run, not returned as
// errors; only infrastructure failures surface as errors.
func (s *WorkflowService) Run(dbc dbctx.Context, userID uuid.UUID, triggerKind string) (*types.PipelineRun, error) {
	if triggerKind != types.TriggerScheduled && triggerKind != types.TriggerManual {
		return nil, fmt.Errorf("unknown trigger kind %q", triggerKind)
	}

	busy, err := s.runs.HasRunning(dbc, userID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrRunInProgress
	}

	run := &types.PipelineRun{
		UserID:      userID,
		TriggerKind: triggerKind,
		Status:      types.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	if _, err := s.runs.Create(dbc, []*types.PipelineRun{run}); err != nil {
		return nil, err
	}
	log := s.log.With("run_id", run.ID, "user_id", userID, "trigger", triggerKind)
	log.Info("Pipeline run started")

	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.TopicHistoryDays)
	recentTopics, err := s.ideas.ListRecentTopics(dbc, userID, cutoff)
	if err != nil {
		return s.finishFailed(dbc, run, "topic_history", err.Error())
	}

	candidates, err := s.generator.Generate(dbc.Ctx, s.cfg.IdeaCount, recentTopics)
	if err != nil {
		log.Error("Idea generation failed", "error", err.Error())
		return s.finishFailed(dbc, run, "idea_generation", err.Error())
	}

	batch := make([]*types.CoreIdea, 0, len(candidates))
	for _, c := range candidates {
		batch = append(batch, &types.CoreIdea{
			UserID:        userID,
			RunID:         run.ID,
			Title:         c.Title,
			Description:   c.Description,
			TopicCategory: c.TopicCategory,
		})
	}
	if _, err := s.ideas.Create(dbc, batch); err != nil {
		return s.finishFailed(dbc, run, "idea_persistence", err.Error())
	}

	outcomes := s.dispatcher.Dispatch(dbc.Ctx, batch)

	rows := make([]*types.PlatformContent, 0, len(outcomes))
	var taskErrors []runErrorEntry
	for _, o := range outcomes {
		if o.Err != nil {
			entry := runErrorEntry{
				Stage:    "transformation",
				IdeaID:   o.IdeaID.String(),
				Platform: o.Platform,
				Reason:   o.Err.Error(),
			}
			var te *platform.TransformationError
			if errors.As(o.Err, &te) {
				entry.Reason = te.LastReason
				entry.Attempts = te.Attempts
			}
			taskErrors = append(taskErrors, entry)
			continue
		}
		rows = append(rows, o.Content)
	}
	if _, err := s.contents.Create(dbc, rows); err != nil {
		return s.finishFailed(dbc, run, "content_persistence", err.Error())
	}

	status := types.RunStatusCompleted
	switch {
	case len(rows) == 0:
		status = types.RunStatusFailed
	case len(taskErrors) > 0:
		status = types.RunStatusPartial
	}

	updates := map[string]interface{}{
		"status":            status,
		"ideas_generated":   len(batch),
		"content_generated": len(rows),
		"finished_at":       time.Now().UTC(),
	}
	if len(taskErrors) > 0 {
		updates["error_summary"] = marshalErrors(taskErrors)
	}
	if err := s.runs.UpdateFields(dbc, run.ID, updates); err != nil {
		return nil, err
	}
	log.Info("Pipeline run finished",
		"status", status,
		"ideas", len(batch),
		"content", len(rows),
		"failed_tasks", len(taskErrors),
	)
	return s.runs.GetByID(dbc, run.ID)
}

func (s *WorkflowService) finishFailed(dbc dbctx.Context, run *types.PipelineRun, stage, reason string) (*types.PipelineRun, error) {
	updates := map[string]interface{}{
		"status":        types.RunStatusFailed,
		"error_summary": marshalErrors([]runErrorEntry{{Stage: stage, Reason: reason}}),
		"finished_at":   time.Now().UTC(),
	}
	if err := s.runs.UpdateFields(dbc, run.ID, updates); err != nil {
		return nil, err
	}
	return s.runs.GetByID(dbc, run.ID)
}

func marshalErrors(entries []runErrorEntry) datatypes.JSON {
	raw, err := json.Marshal(entries)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
