package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/types"
)

type StepRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ObligationStep) error
	GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationStep, error)
	GetByIDForObligation(ctx context.Context, tx *gorm.DB, id, obligationID uuid.UUID) (*types.ObligationStep, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, now time.Time) error
}

type stepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepRepo(db *gorm.DB, baseLog *logger.Logger) StepRepo {
	repoLog := baseLog.With("repo", "StepRepo")
	return &stepRepo{db: db, log: repoLog}
}

func (r *stepRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ObligationStep) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&rows).Error
}

func (r *stepRepo) GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObligationStep
	if err := transaction.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *stepRepo) GetByIDForObligation(ctx context.Context, tx *gorm.DB, id, obligationID uuid.UUID) (*types.ObligationStep, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.ObligationStep
	err := transaction.WithContext(ctx).
		Where("id = ? AND obligation_id = ?", id, obligationID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *stepRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, now time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.ObligationStep{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       types.StepCompleted,
			"completed_at": now,
		}).Error
}
