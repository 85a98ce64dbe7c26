package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pkg/dbctx"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

type RunRepo interface {
	Create(dbc dbctx.Context, runs []*types.PipelineRun) ([]*types.PipelineRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PipelineRun, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.PipelineRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// HasRunning reports whether the user already has a run in the running state.
	HasRunning(dbc dbctx.Context, userID uuid.UUID) (bool, error)
}

type runRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return &runRepo{
		db:  db,
		log: baseLog.With("repo", "RunRepo"),
	}
}

func (r *runRepo) Create(dbc dbctx.Context, runs []*types.PipelineRun) ([]*types.PipelineRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(runs) == 0 {
		return []*types.PipelineRun{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *runRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PipelineRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var run types.PipelineRun
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *runRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.PipelineRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return []*types.PipelineRun{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.PipelineRun
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *runRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PipelineRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *runRepo) HasRunning(dbc dbctx.Context, userID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.PipelineRun{}).
		Where("user_id = ? AND status = ?", userID, types.RunStatusRunning).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
