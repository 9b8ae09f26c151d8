package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/types"
)

// ProofRepo is append-only: proofs are evidence records and are never
// updated or removed.
type ProofRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ObligationProof) (*types.ObligationProof, error)
	GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationProof, error)
	HasProof(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) (bool, error)
	ObligationIDsWithProof(ctx context.Context, tx *gorm.DB, obligationIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
}

type proofRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProofRepo(db *gorm.DB, baseLog *logger.Logger) ProofRepo {
	repoLog := baseLog.With("repo", "ProofRepo")
	return &proofRepo{db: db, log: repoLog}
}

func (r *proofRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ObligationProof) (*types.ObligationProof, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *proofRepo) GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationProof, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObligationProof
	if err := transaction.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *proofRepo) HasProof(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ObligationProof{}).
		Where("obligation_id = ?", obligationID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *proofRepo) ObligationIDsWithProof(ctx context.Context, tx *gorm.DB, obligationIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	out := make(map[uuid.UUID]struct{})
	if len(obligationIDs) == 0 {
		return out, nil
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.ObligationProof{}).
		Where("obligation_id IN ?", obligationIDs).
		Distinct().
		Pluck("obligation_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
