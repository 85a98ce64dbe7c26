package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/postpilot/postpilot-backend/internal/data/repos/content"
	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pipeline/lifecycle"
	"github.com/postpilot/postpilot-backend/internal/pkg/dbctx"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrRunNotFound     = errors.New("run not found")
	ErrEmptyBody       = errors.New("body must not be empty")
)

// ContentService is the review-surface API: querying generated content,
// advancing its lifecycle, and applying manual edits.
type ContentService struct {
	log      *logger.Logger
	contents content.ContentRepo
	runs     content.RunRepo
	ideas    content.IdeaRepo
}

func NewContentService(baseLog *logger.Logger, contents content.ContentRepo, runs content.RunRepo, ideaRepo content.IdeaRepo) *ContentService {
	return &ContentService{
		log:      baseLog.With("service", "ContentService"),
		contents: contents,
		runs:     runs,
		ideas:    ideaRepo,
	}
}

func (s *ContentService) GetByFilter(dbc dbctx.Context, filter content.ContentFilter) ([]*types.PlatformContent, error) {
	return s.contents.GetByFilter(dbc, filter)
}

func (s *ContentService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PlatformContent, error) {
	row, err := s.contents.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrContentNotFound
	}
	return row, nil
}

// Transition advances one content row to the requested state. Illegal moves
// return lifecycle.IllegalTransitionError and change nothing.
func (s *ContentService) Transition(dbc dbctx.Context, id uuid.UUID, to string) (*types.PlatformContent, error) {
	row, err := s.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Step(row, to); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"state": row.State}
	if to == types.ContentStateEdited {
		updates["edited_body"] = row.EditedBody
	}
	if err := s.contents.UpdateFields(dbc, id, updates); err != nil {
		return nil, err
	}
	s.log.Info("Content transitioned", "content_id", id, "state", row.State)
	return row, nil
}

// EditBody replaces the working body, records it as the edited body, and moves
// the row into the edited state. The original generated body is never updated.
func (s *ContentService) EditBody(dbc dbctx.Context, id uuid.UUID, body string) (*types.PlatformContent, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}
	row, err := s.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.ApplyEdit(row, body); err != nil {
		return nil, err
	}
	err = s.contents.UpdateFields(dbc, id, map[string]interface{}{
		"state":       row.State,
		"body":        row.Body,
		"edited_body": row.EditedBody,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Content edited", "content_id", id)
	return row, nil
}

// TodayContent lists the user's content generated since midnight UTC.
func (s *ContentService) TodayContent(dbc dbctx.Context, userID uuid.UUID) ([]*types.PlatformContent, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.contents.GetByFilter(dbc, content.ContentFilter{UserID: userID, From: &midnight})
}

func (s *ContentService) ListRuns(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.PipelineRun, error) {
	return s.runs.ListByUser(dbc, userID, limit)
}

// GetRun returns one run together with the ideas it produced.
func (s *ContentService) GetRun(dbc dbctx.Context, id uuid.UUID) (*types.PipelineRun, []*types.CoreIdea, error) {
	run, err := s.runs.GetByID(dbc, id)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, ErrRunNotFound
	}
	ideaRows, err := s.ideas.GetByRunID(dbc, id)
	if err != nil {
		return nil, nil, err
	}
	return run, ideaRows, nil
}
