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

// CreateObligationInput is the payload external collaborators (manual
// entry, intake confirmation, email analysis) hand over. The core trusts
// it as given; it validates shape, not provenance.
type CreateObligationInput struct {
	Type          string     `json:"type"`
	Title         string     `json:"title"`
	Source        string     `json:"source"`
	SourceRef     string     `json:"source_ref"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ProofRequired bool       `json:"proof_required"`
}

type ObligationService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateObligationInput) (*types.Obligation, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Obligation, error)
	Get(ctx context.Context, obligationID, userID uuid.UUID) (*types.Obligation, error)
	// Reattempt creates a fresh obligation linked to a failed one. The
	// failed record is never touched: failure stays on the books.
	Reattempt(ctx context.Context, obligationID, userID uuid.UUID, newDeadline *time.Time, title string) (*types.Obligation, error)
	History(ctx context.Context, obligationID, userID uuid.UUID) ([]*types.ObligationHistoryEvent, error)
	ListSteps(ctx context.Context, obligationID, userID uuid.UUID) ([]*types.ObligationStep, error)
	CompleteStep(ctx context.Context, obligationID, stepID, userID uuid.UUID) (*types.ObligationStep, error)
}

type obligationService struct {
	db             *gorm.DB
	log            *logger.Logger
	obligationRepo repos.ObligationRepo
	stepRepo       repos.StepRepo
	historyRepo    repos.HistoryRepo
	now            func() time.Time
}

func NewObligationService(db *gorm.DB, baseLog *logger.Logger, obligationRepo repos.ObligationRepo, stepRepo repos.StepRepo, historyRepo repos.HistoryRepo) ObligationService {
	serviceLog := baseLog.With("service", "ObligationService")
	return &obligationService{
		db:             db,
		log:            serviceLog,
		obligationRepo: obligationRepo,
		stepRepo:       stepRepo,
		historyRepo:    historyRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *obligationService) Create(ctx context.Context, userID uuid.UUID, in CreateObligationInput) (*types.Obligation, error) {
	if !types.ValidObligationType(in.Type) {
		return nil, domain.Validation(domain.CodeInvalidType, "invalid obligation type %q", in.Type)
	}
	if !types.ValidObligationSource(in.Source) {
		return nil, domain.Validation(domain.CodeInvalidSource, "invalid obligation source %q", in.Source)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.Validation(domain.CodeEmptyTitle, "title is required")
	}

	obl := &types.Obligation{
		UserID:        userID,
		Type:          types.ObligationType(in.Type),
		Title:         strings.TrimSpace(in.Title),
		Source:        types.ObligationSource(in.Source),
		SourceRef:     in.SourceRef,
		Deadline:      in.Deadline,
		Status:        types.StatusPending,
		ProofRequired: in.ProofRequired,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.obligationRepo.Create(ctx, tx, obl); err != nil {
			return err
		}
		return s.seedStepPlan(ctx, tx, obl)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Obligation created", "obligation_id", obl.ID, "type", obl.Type, "source", obl.Source)
	return obl, nil
}

func (s *obligationService) List(ctx context.Context, userID uuid.UUID) ([]*types.Obligation, error) {
	return s.obligationRepo.GetByUserID(ctx, nil, userID)
}

func (s *obligationService) Get(ctx context.Context, obligationID, userID uuid.UUID) (*types.Obligation, error) {
	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}
	return obl, nil
}

func (s *obligationService) Reattempt(ctx context.Context, obligationID, userID uuid.UUID, newDeadline *time.Time, title string) (*types.Obligation, error) {
	prior, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, domain.NotFound("obligation")
	}
	if prior.Status != types.StatusFailed {
		return nil, domain.Conflict(domain.CodeNotFailed, "only failed obligations can be reattempted")
	}

	now := s.now()
	if strings.TrimSpace(title) == "" {
		title = prior.Title
	}
	priorID := prior.ID
	fresh := &types.Obligation{
		UserID:                  userID,
		Type:                    prior.Type,
		Title:                   title,
		Source:                  types.SourceManual,
		SourceRef:               fmt.Sprintf("reattempt:%s:%s", prior.ID, now.Format(time.RFC3339)),
		Deadline:                newDeadline,
		Status:                  types.StatusPending,
		ProofRequired:           prior.ProofRequired,
		PriorFailedObligationID: &priorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.obligationRepo.Create(ctx, tx, fresh); err != nil {
			return err
		}
		if err := s.seedStepPlan(ctx, tx, fresh); err != nil {
			return err
		}
		// Paired audit entries: one on the failed record, one on the fresh
		// attempt.
		priorMeta, _ := json.Marshal(map[string]string{"reattempt_obligation_id": fresh.ID.String()})
		freshMeta, _ := json.Marshal(map[string]string{"prior_failed_obligation_id": prior.ID.String()})
		return s.historyRepo.Append(ctx, tx, []*types.ObligationHistoryEvent{
			{
				ObligationID: prior.ID,
				UserID:       userID,
				EventType:    types.EventReattemptCreated,
				Reason:       "reattempt_obligation_id:" + fresh.ID.String(),
				ActorUserID:  userID,
				Meta:         datatypes.JSON(priorMeta),
			},
			{
				ObligationID: fresh.ID,
				UserID:       userID,
				EventType:    types.EventReattemptCreated,
				Reason:       "prior_failed_obligation_id:" + prior.ID.String(),
				ActorUserID:  userID,
				Meta:         datatypes.JSON(freshMeta),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Reattempt created", "prior_obligation_id", prior.ID, "obligation_id", fresh.ID)
	return fresh, nil
}

func (s *obligationService) History(ctx context.Context, obligationID, userID uuid.UUID) ([]*types.ObligationHistoryEvent, error) {
	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}
	return s.historyRepo.GetByObligationID(ctx, nil, obligationID)
}

func (s *obligationService) ListSteps(ctx context.Context, obligationID, userID uuid.UUID) ([]*types.ObligationStep, error) {
	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}
	return s.stepRepo.GetByObligationID(ctx, nil, obligationID)
}

// CompleteStep enforces strict order: only the lowest-position pending step
// may complete. Completing an already-completed step is a no-op.
func (s *obligationService) CompleteStep(ctx context.Context, obligationID, stepID, userID uuid.UUID) (*types.ObligationStep, error) {
	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}

	step, err := s.stepRepo.GetByIDForObligation(ctx, nil, stepID, obligationID)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, domain.NotFound("step")
	}
	if step.Status == types.StepCompleted {
		return step, nil
	}

	steps, err := s.stepRepo.GetByObligationID(ctx, nil, obligationID)
	if err != nil {
		return nil, err
	}
	for _, other := range steps {
		if other.Status != types.StepCompleted && other.Position < step.Position {
			return nil, domain.Conflict(domain.CodeStepOutOfOrder, "steps complete in order; %q comes first", other.Label)
		}
	}

	now := s.now()
	if err := s.stepRepo.MarkCompleted(ctx, nil, step.ID, now); err != nil {
		return nil, err
	}
	step.Status = types.StepCompleted
	step.CompletedAt = &now

	s.log.Info("Step completed", "obligation_id", obligationID, "step_id", stepID)
	return step, nil
}

func (s *obligationService) seedStepPlan(ctx context.Context, tx *gorm.DB, obl *types.Obligation) error {
	plan := rules.StepPlans[obl.Type]
	if len(plan) == 0 {
		return nil
	}
	steps := make([]*types.ObligationStep, 0, len(plan))
	for i, label := range plan {
		steps = append(steps, &types.ObligationStep{
			ObligationID: obl.ID,
			Label:        label,
			Position:     i + 1,
			Status:       types.StepPending,
		})
	}
	return s.stepRepo.Create(ctx, tx, steps)
}
