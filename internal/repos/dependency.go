package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/types"
)

type DependencyRepo interface {
	// CreateIfAbsent inserts edges with an insert-if-absent contract:
	// existing edges are skipped at the storage layer, never duplicated and
	// never an error. Returns the number of rows actually inserted.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, rows []*types.ObligationDependency) (int, error)
	GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationDependency, error)
	GetByObligationIDs(ctx context.Context, tx *gorm.DB, obligationIDs []uuid.UUID) ([]*types.ObligationDependency, error)
	EdgeExists(ctx context.Context, tx *gorm.DB, obligationID, dependsOnID uuid.UUID) (bool, error)
}

type dependencyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDependencyRepo(db *gorm.DB, baseLog *logger.Logger) DependencyRepo {
	repoLog := baseLog.With("repo", "DependencyRepo")
	return &dependencyRepo{db: db, log: repoLog}
}

func (r *dependencyRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, rows []*types.ObligationDependency) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return 0, nil
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "obligation_id"},
				{Name: "depends_on_obligation_id"},
			},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *dependencyRepo) GetByObligationID(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.ObligationDependency, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObligationDependency
	if err := transaction.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *dependencyRepo) GetByObligationIDs(ctx context.Context, tx *gorm.DB, obligationIDs []uuid.UUID) ([]*types.ObligationDependency, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObligationDependency
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

func (r *dependencyRepo) EdgeExists(ctx context.Context, tx *gorm.DB, obligationID, dependsOnID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ObligationDependency{}).
		Where("obligation_id = ? AND depends_on_obligation_id = ?", obligationID, dependsOnID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
