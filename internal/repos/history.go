package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/types"
)

// HistoryRepo is append-only audit storage.
type HistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, rows []*types.ObligationHistoryEvent) error
	GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationHistoryEvent, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

func (r *historyRepo) Append(ctx context.Context, tx *gorm.DB, rows []*types.ObligationHistoryEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(&rows).Error
}

func (r *historyRepo) GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationHistoryEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObligationHistoryEvent
	if err := transaction.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
