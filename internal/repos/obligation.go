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

type ObligationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Obligation) (*types.Obligation, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.Obligation, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Obligation, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Obligation, error)
	GetByUserAndTypes(ctx context.Context, tx *gorm.DB, userID uuid.UUID, oblTypes []types.ObligationType) ([]*types.Obligation, error)
	UpdateStatusCAS(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to types.ObligationStatus, now time.Time) (bool, error)
	UpdateAnnotations(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
}

type obligationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObligationRepo(db *gorm.DB, baseLog *logger.Logger) ObligationRepo {
	repoLog := baseLog.With("repo", "ObligationRepo")
	return &obligationRepo{db: db, log: repoLog}
}

func (r *obligationRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Obligation) (*types.Obligation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// GetByIDForUser returns (nil, nil) when no row matches both id and user.
// Ownership scoping happens here so missing and foreign rows are
// indistinguishable to callers.
func (r *obligationRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.Obligation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Obligation
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *obligationRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Obligation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Obligation
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *obligationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Obligation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Obligation
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *obligationRepo) GetByUserAndTypes(ctx context.Context, tx *gorm.DB, userID uuid.UUID, oblTypes []types.ObligationType) ([]*types.Obligation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Obligation
	if len(oblTypes) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND type IN ?", userID, oblTypes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateStatusCAS performs a compare-and-swap on status. Returns false when
// the row no longer holds the expected status, so two racing transitions
// cannot both succeed.
func (r *obligationRepo) UpdateStatusCAS(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to types.ObligationStatus, now time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Obligation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":            to,
			"status_changed_at": now,
			"updated_at":        now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *obligationRepo) UpdateAnnotations(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Obligation{}).
		Where("id = ?", id).
		Updates(fields).Error
}
