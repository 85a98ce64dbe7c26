package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pkg/dbctx"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

// ContentFilter narrows GetByFilter. Zero values mean "any".
type ContentFilter struct {
	UserID   uuid.UUID
	From     *time.Time
	To       *time.Time
	State    string
	Platform string
}

type ContentRepo interface {
	Create(dbc dbctx.Context, rows []*types.PlatformContent) ([]*types.PlatformContent, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PlatformContent, error)
	GetByIdeaIDs(dbc dbctx.Context, ideaIDs []uuid.UUID) ([]*types.PlatformContent, error)
	GetByFilter(dbc dbctx.Context, filter ContentFilter) ([]*types.PlatformContent, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{
		db:  db,
		log: baseLog.With("repo", "ContentRepo"),
	}
}

func (r *contentRepo) Create(dbc dbctx.Context, rows []*types.PlatformContent) ([]*types.PlatformContent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.PlatformContent{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PlatformContent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.PlatformContent
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *contentRepo) GetByIdeaIDs(dbc dbctx.Context, ideaIDs []uuid.UUID) ([]*types.PlatformContent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PlatformContent
	if len(ideaIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("idea_id IN ?", ideaIDs).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) GetByFilter(dbc dbctx.Context, filter ContentFilter) ([]*types.PlatformContent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if filter.UserID == uuid.Nil {
		return []*types.PlatformContent{}, nil
	}

	q := transaction.WithContext(dbc.Ctx).
		Model(&types.PlatformContent{}).
		Where("user_id = ?", filter.UserID)
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}

	var out []*types.PlatformContent
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.PlatformContent{}).
		Where("id = ?", id).
		Updates(updates).Error
}
