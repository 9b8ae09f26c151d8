package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/types"
)

// OverrideRepo is append-only. There is no update or delete method and none
// may be added: overrides are immutable audit records.
type OverrideRepo interface {
	// Create inserts one override. Returns (false, nil) when an override for
	// the same edge already exists, decided at the storage layer so
	// concurrent duplicates cannot both land.
	Create(ctx context.Context, tx *gorm.DB, row *types.ObligationOverride) (bool, error)
	GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationOverride, error)
	GetByObligationIDs(ctx context.Context, tx *gorm.DB, obligationIDs []uuid.UUID) ([]*types.ObligationOverride, error)
}

type overrideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOverrideRepo(db *gorm.DB, baseLog *logger.Logger) OverrideRepo {
	repoLog := baseLog.With("repo", "OverrideRepo")
	return &overrideRepo{db: db, log: repoLog}
}

func (r *overrideRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ObligationOverride) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "obligation_id"},
				{Name: "overridden_dependency_id"},
			},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *overrideRepo) GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationOverride, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObligationOverride
	if err := transaction.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *overrideRepo) GetByObligationIDs(ctx context.Context, tx *gorm.DB, obligationIDs []uuid.UUID) ([]*types.ObligationOverride, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObligationOverride
	if len(obligationIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("obligation_id IN ?", obligationIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
