package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pkg/dbctx"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

type IdeaRepo interface {
	Create(dbc dbctx.Context, ideas []*types.CoreIdea) ([]*types.CoreIdea, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CoreIdea, error)
	GetByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.CoreIdea, error)
	// ListRecentTopics returns the distinct topic categories attached to the
	// user's ideas created at or after the cutoff. Pure read projection.
	ListRecentTopics(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]string, error)
}

type ideaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdeaRepo(db *gorm.DB, baseLog *logger.Logger) IdeaRepo {
	return &ideaRepo{
		db:  db,
		log: baseLog.With("repo", "IdeaRepo"),
	}
}

func (r *ideaRepo) Create(dbc dbctx.Context, ideas []*types.CoreIdea) ([]*types.CoreIdea, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ideas) == 0 {
		return []*types.CoreIdea{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&ideas).Error; err != nil {
		return nil, err
	}
	return ideas, nil
}

func (r *ideaRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CoreIdea, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CoreIdea
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ideaRepo) GetByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.CoreIdea, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if runID == uuid.Nil {
		return []*types.CoreIdea{}, nil
	}
	var out []*types.CoreIdea
	if err := transaction.WithContext(dbc.Ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ideaRepo) ListRecentTopics(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return []string{}, nil
	}
	var topics []string
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CoreIdea{}).
		Distinct("topic_category").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("topic_category", &topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}
