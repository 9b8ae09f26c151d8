package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/domain"
	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/repos"
	"github.com/yungbote/obligo-backend/internal/types"
)

// OverrideService writes audited exceptions. An override removes the hard
// block of one specific dependency edge and nothing else: it does not
// change the prerequisite's status, does not apply to similar edges, and is
// never suggested or created automatically. One edge, one reason, one
// record. No bulk operation exists by design.
type OverrideService interface {
	Create(ctx context.Context, obligationID, userID, overriddenDependencyID uuid.UUID, reason string) (*types.ObligationOverride, error)
	List(ctx context.Context, obligationID, userID uuid.UUID) ([]*types.ObligationOverride, error)
}

type overrideService struct {
	db             *gorm.DB
	log            *logger.Logger
	obligationRepo repos.ObligationRepo
	dependencyRepo repos.DependencyRepo
	overrideRepo   repos.OverrideRepo
}

func NewOverrideService(db *gorm.DB, baseLog *logger.Logger, obligationRepo repos.ObligationRepo, dependencyRepo repos.DependencyRepo, overrideRepo repos.OverrideRepo) OverrideService {
	serviceLog := baseLog.With("service", "OverrideService")
	return &overrideService{
		db:             db,
		log:            serviceLog,
		obligationRepo: obligationRepo,
		dependencyRepo: dependencyRepo,
		overrideRepo:   overrideRepo,
	}
}

func (s *overrideService) Create(ctx context.Context, obligationID, userID, overriddenDependencyID uuid.UUID, reason string) (*types.ObligationOverride, error) {
	// Input validation before any stored-state read.
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Validation(domain.CodeEmptyReason, "override reason is required; overrides are not silent")
	}
	if obligationID == overriddenDependencyID {
		return nil, domain.Validation(domain.CodeSelfReference, "cannot override a self-dependency")
	}

	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}
	dep, err := s.obligationRepo.GetByIDForUser(ctx, nil, overriddenDependencyID, userID)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		return nil, domain.NotFound("dependency obligation")
	}

	// Can't override a block that doesn't exist.
	exists, err := s.dependencyRepo.EdgeExists(ctx, nil, obligationID, overriddenDependencyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.Validation(domain.CodeNoDependencyEdge, "no dependency edge exists between these obligations")
	}

	// A verified dependency doesn't block; overriding it would be noise.
	if dep.Status == types.StatusVerified {
		return nil, domain.Validation(domain.CodeDependencyVerified, "this dependency is already verified; no override needed")
	}

	row := &types.ObligationOverride{
		ObligationID:           obligationID,
		OverriddenDependencyID: overriddenDependencyID,
		UserID:                 userID,
		UserReason:             reason,
	}
	inserted, err := s.overrideRepo.Create(ctx, nil, row)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, domain.Conflict(domain.CodeDuplicateOverride, "an override already exists for this dependency edge")
	}

	s.log.Info("Override created",
		"obligation_id", obligationID,
		"overridden_dependency_id", overriddenDependencyID,
		"reason", reason,
	)
	return row, nil
}

func (s *overrideService) List(ctx context.Context, obligationID, userID uuid.UUID) ([]*types.ObligationOverride, error) {
	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}
	return s.overrideRepo.GetByObligationID(ctx, nil, obligationID)
}
