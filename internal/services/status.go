package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/domain"
	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/repos"
	"github.com/yungbote/obligo-backend/internal/rules"
	"github.com/yungbote/obligo-backend/internal/types"
)

// StatusService is the only mutation path for obligation status. Guards are
// evaluated in a fixed order: irreversibility, failure eligibility,
// dependency gate, proof gate, steps gate. Every rejection is reported;
// nothing is silently coerced.
type StatusService interface {
	UpdateStatus(ctx context.Context, obligationID, userID uuid.UUID, newStatus string) (*types.Obligation, error)
}

type statusService struct {
	db             *gorm.DB
	log            *logger.Logger
	obligationRepo repos.ObligationRepo
	dependencyRepo repos.DependencyRepo
	overrideRepo   repos.OverrideRepo
	proofRepo      repos.ProofRepo
	stepRepo       repos.StepRepo
	historyRepo    repos.HistoryRepo
	now            func() time.Time
}

func NewStatusService(db *gorm.DB, baseLog *logger.Logger, obligationRepo repos.ObligationRepo, dependencyRepo repos.DependencyRepo, overrideRepo repos.OverrideRepo, proofRepo repos.ProofRepo, stepRepo repos.StepRepo, historyRepo repos.HistoryRepo) StatusService {
	serviceLog := baseLog.With("service", "StatusService")
	return &statusService{
		db:             db,
		log:            serviceLog,
		obligationRepo: obligationRepo,
		dependencyRepo: dependencyRepo,
		overrideRepo:   overrideRepo,
		proofRepo:      proofRepo,
		stepRepo:       stepRepo,
		historyRepo:    historyRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *statusService) UpdateStatus(ctx context.Context, obligationID, userID uuid.UUID, newStatus string) (*types.Obligation, error) {
	if !types.ValidObligationStatus(newStatus) {
		return nil, domain.Validation(domain.CodeInvalidStatus, "invalid status %q", newStatus)
	}
	requested := types.ObligationStatus(newStatus)

	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}

	now := s.now()

	// Gate 1: irreversibility.
	if obl.Status.Terminal() && requested != obl.Status {
		return nil, domain.Conflict(domain.CodeIrreversibleStatus, "irreversible: %s obligations cannot change status", obl.Status)
	}

	// Gate 2: failure eligibility. Failure is recorded, not predicted — the
	// deadline must already be behind us.
	if requested == types.StatusFailed {
		if obl.Deadline == nil {
			return nil, domain.Conflict(domain.CodeMissingDeadline, "cannot mark failed without a deadline")
		}
		if now.Before(*obl.Deadline) {
			return nil, domain.Conflict(domain.CodeDeadlineNotPassed, "cannot mark failed before the deadline passes")
		}
	}

	// Gate 3: dependency gate. Checked before proof because dependencies
	// are more fundamental. Overridden edges do not block.
	if requested == types.StatusSubmitted || requested == types.StatusVerified {
		unmet, err := s.unmetDependencies(ctx, nil, obligationID)
		if err != nil {
			return nil, err
		}
		if len(unmet) > 0 {
			blockers := make([]domain.Blocker, 0, len(unmet))
			lines := make([]string, 0, len(unmet))
			for _, d := range unmet {
				blockers = append(blockers, domain.Blocker{
					ObligationID: d.ID,
					Type:         string(d.Type),
					Title:        d.Title,
					Status:       string(d.Status),
				})
				lines = append(lines, fmt.Sprintf("%s (%q, status: %s)", d.Type, d.Title, d.Status))
			}
			return nil, domain.ConflictWithBlockers(
				domain.CodeUnmetDependencies,
				fmt.Sprintf("blocked: %d unverified prerequisite(s) must be completed first: %s", len(unmet), strings.Join(lines, "; ")),
				blockers,
			)
		}
	}

	// Gate 4: proof gate.
	if requested == types.StatusVerified && obl.ProofRequired {
		hasProof, err := s.proofRepo.HasProof(ctx, nil, obligationID)
		if err != nil {
			return nil, err
		}
		if !hasProof {
			return nil, domain.Conflict(domain.CodeMissingProof, "blocked: proof is required to verify this obligation; attach proof first")
		}
	}

	// Gate 5: steps gate.
	if requested == types.StatusVerified && rules.StepsGated(obl.Type) {
		steps, err := s.stepRepo.GetByObligationID(ctx, nil, obligationID)
		if err != nil {
			return nil, err
		}
		for _, step := range steps {
			if step.Status != types.StepCompleted {
				return nil, domain.Conflict(domain.CodeIncompleteSteps, "blocked: all required steps must be completed before verification")
			}
		}
	}

	// Status write and propagation commit or roll back together. The CAS
	// serializes racing transitions: the loser sees zero rows affected.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		swapped, err := s.obligationRepo.UpdateStatusCAS(ctx, tx, obligationID, obl.Status, requested, now)
		if err != nil {
			return err
		}
		if !swapped {
			return domain.Conflict(domain.CodeConcurrentTransition, "obligation status changed while the transition was being evaluated")
		}
		if requested == types.StatusVerified {
			obl.Status = types.StatusVerified
			if err := s.propagateUnblock(ctx, tx, obl, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	s.log.Info("Obligation status updated", "obligation_id", obligationID, "status", requested)
	return updated, nil
}

// unmetDependencies returns the prerequisites that block this obligation:
// not verified and not overridden.
func (s *statusService) unmetDependencies(ctx context.Context, tx *gorm.DB, obligationID uuid.UUID) ([]*types.Obligation, error) {
	deps, err := s.dependencyRepo.GetByObligationID(ctx, tx, obligationID)
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		return nil, nil
	}

	overrides, err := s.overrideRepo.GetByObligationID(ctx, tx, obligationID)
	if err != nil {
		return nil, err
	}
	overridden := make(map[uuid.UUID]struct{}, len(overrides))
	for _, ov := range overrides {
		overridden[ov.OverriddenDependencyID] = struct{}{}
	}

	depIDs := make([]uuid.UUID, 0, len(deps))
	for _, d := range deps {
		depIDs = append(depIDs, d.DependsOnObligationID)
	}
	depObls, err := s.obligationRepo.GetByIDs(ctx, tx, depIDs)
	if err != nil {
		return nil, err
	}

	var unmet []*types.Obligation
	for _, d := range depObls {
		if d.Status == types.StatusVerified {
			continue
		}
		if _, ok := overridden[d.ID]; ok {
			continue
		}
		unmet = append(unmet, d)
	}
	return unmet, nil
}

// propagateUnblock promotes blocked dependents of the newly verified
// obligation back to pending, one causal level only. It never advances an
// obligation past pending: propagation removes blocks, it does not make
// progress.
func (s *statusService) propagateUnblock(ctx context.Context, tx *gorm.DB, source *types.Obligation, now time.Time) error {
	targetTypes := rules.PropagationMap[source.Type]
	if len(targetTypes) == 0 {
		return nil
	}

	sourceKey := rules.SchoolKey(source.SourceRef)

	candidates, err := s.obligationRepo.GetByUserAndTypes(ctx, tx, source.UserID, targetTypes)
	if err != nil {
		return err
	}

	for _, target := range candidates {
		if target.Status != types.StatusBlocked {
			continue
		}
		// Scope to the source's institutional context when it has one.
		if sourceKey != rules.NoSchoolKey && rules.SchoolKey(target.SourceRef) != sourceKey {
			continue
		}
		unmet, err := s.unmetDependencies(ctx, tx, target.ID)
		if err != nil {
			return err
		}
		if len(unmet) > 0 {
			continue
		}

		swapped, err := s.obligationRepo.UpdateStatusCAS(ctx, tx, target.ID, types.StatusBlocked, types.StatusPending, now)
		if err != nil {
			return err
		}
		if !swapped {
			continue
		}

		meta, _ := json.Marshal(map[string]string{"source_obligation_id": source.ID.String()})
		if err := s.historyRepo.Append(ctx, tx, []*types.ObligationHistoryEvent{{
			ObligationID: target.ID,
			UserID:       target.UserID,
			EventType:    types.EventPropagationUnblocked,
			Reason:       "source_obligation_id:" + source.ID.String(),
			ActorUserID:  source.UserID,
			Meta:         datatypes.JSON(meta),
		}}); err != nil {
			return err
		}
		s.log.Info("Propagation unblocked obligation", "obligation_id", target.ID, "source_obligation_id", source.ID)
	}
	return nil
}
