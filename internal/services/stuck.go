package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/repos"
	"github.com/yungbote/obligo-backend/internal/rules"
	"github.com/yungbote/obligo-backend/internal/severity"
	"github.com/yungbote/obligo-backend/internal/types"
)

type ObligationStuckState struct {
	ObligationID   uuid.UUID              `json:"obligation_id"`
	Type           types.ObligationType   `json:"type"`
	Title          string                 `json:"title"`
	Status         types.ObligationStatus `json:"status"`
	Stuck          bool                   `json:"stuck"`
	StuckReason    *string                `json:"stuck_reason,omitempty"`
	StuckSince     *time.Time             `json:"stuck_since,omitempty"`
	IsDeadlocked   bool                   `json:"is_deadlocked"`
	Chain          []ChainLink            `json:"chain"`
	DaysStale      int                    `json:"days_stale"`
	Severity       severity.Level         `json:"severity"`
	SeverityReason string                 `json:"severity_reason"`
	SeveritySince  *time.Time             `json:"severity_since,omitempty"`
}

type DetectResult struct {
	Obligations        []ObligationStuckState `json:"obligations"`
	StuckCount         int                    `json:"stuck_count"`
	DeadlocksDetected  int                    `json:"deadlocks_detected"`
	StaleThresholdDays int                    `json:"stale_threshold_days"`
	SeverityCounts     map[string]int         `json:"severity_counts"`
}

// StuckService runs the whole-user batch evaluation: deadlock detection
// needs global graph state, so there is no per-obligation variant. Stuck is
// structural immobility plus staleness, not inactivity. The batch never
// un-blocks anything and never creates overrides; it only describes why
// nothing is moving, and it persists annotations only when they changed.
type StuckService interface {
	Detect(ctx context.Context, userID uuid.UUID) (*DetectResult, error)
}

type stuckService struct {
	db             *gorm.DB
	log            *logger.Logger
	obligationRepo repos.ObligationRepo
	dependencyRepo repos.DependencyRepo
	overrideRepo   repos.OverrideRepo
	proofRepo      repos.ProofRepo
	staleDays      int
	now            func() time.Time
}

func NewStuckService(db *gorm.DB, baseLog *logger.Logger, obligationRepo repos.ObligationRepo, dependencyRepo repos.DependencyRepo, overrideRepo repos.OverrideRepo, proofRepo repos.ProofRepo, staleDays int) StuckService {
	serviceLog := baseLog.With("service", "StuckService")
	if staleDays <= 0 {
		staleDays = rules.StaleDaysDefault
	}
	return &stuckService{
		db:             db,
		log:            serviceLog,
		obligationRepo: obligationRepo,
		dependencyRepo: dependencyRepo,
		overrideRepo:   overrideRepo,
		proofRepo:      proofRepo,
		staleDays:      staleDays,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *stuckService) Detect(ctx context.Context, userID uuid.UUID) (*DetectResult, error) {
	all, err := s.obligationRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return &DetectResult{
			Obligations:        []ObligationStuckState{},
			StaleThresholdDays: s.staleDays,
			SeverityCounts:     map[string]int{},
		}, nil
	}

	oblIDs := make([]uuid.UUID, 0, len(all))
	byID := make(map[uuid.UUID]*types.Obligation, len(all))
	for _, obl := range all {
		oblIDs = append(oblIDs, obl.ID)
		byID[obl.ID] = obl
	}

	deps, err := s.dependencyRepo.GetByObligationIDs(ctx, nil, oblIDs)
	if err != nil {
		return nil, err
	}
	edges := make([]depEdge, 0, len(deps))
	depGraph := make(map[uuid.UUID][]uuid.UUID)
	for _, d := range deps {
		edges = append(edges, depEdge{from: d.ObligationID, to: d.DependsOnObligationID})
		depGraph[d.ObligationID] = append(depGraph[d.ObligationID], d.DependsOnObligationID)
	}

	overrides, err := s.overrideRepo.GetByObligationIDs(ctx, nil, oblIDs)
	if err != nil {
		return nil, err
	}
	overrideSet := make(map[depEdge]struct{}, len(overrides))
	for _, ov := range overrides {
		overrideSet[depEdge{from: ov.ObligationID, to: ov.OverriddenDependencyID}] = struct{}{}
	}

	withProof, err := s.proofRepo.ObligationIDsWithProof(ctx, nil, oblIDs)
	if err != nil {
		return nil, err
	}

	deadlocked := findDeadlocked(edges, overrideSet)
	now := s.now()

	states := make([]ObligationStuckState, 0, len(all))
	for _, obl := range all {
		state := s.evaluateOne(obl, depGraph, overrideSet, withProof, deadlocked, byID, now)
		states = append(states, state)

		if err := s.persistIfChanged(ctx, obl, state, now); err != nil {
			// Best-effort batch: one failed write must not abort the rest.
			s.log.Warn("Failed to persist stuck/severity state, continuing", "obligation_id", obl.ID, "error", err)
		}
	}

	result := &DetectResult{
		Obligations:        states,
		StaleThresholdDays: s.staleDays,
		SeverityCounts:     map[string]int{},
	}
	for _, st := range states {
		if st.Stuck {
			result.StuckCount++
		}
		if st.IsDeadlocked {
			result.DeadlocksDetected++
		}
		result.SeverityCounts[string(st.Severity)]++
	}
	return result, nil
}

func (s *stuckService) evaluateOne(
	obl *types.Obligation,
	depGraph map[uuid.UUID][]uuid.UUID,
	overrideSet map[depEdge]struct{},
	withProof map[uuid.UUID]struct{},
	deadlocked map[uuid.UUID]struct{},
	byID map[uuid.UUID]*types.Obligation,
	now time.Time,
) ObligationStuckState {
	state := ObligationStuckState{
		ObligationID: obl.ID,
		Type:         obl.Type,
		Title:        obl.Title,
		Status:       obl.Status,
		Chain:        []ChainLink{},
	}

	daysStale := s.daysSinceStatusChange(obl, now)

	switch obl.Status {
	case types.StatusVerified:
		// Never stuck.
		state.Severity, state.SeverityReason = severity.Classify(obl.Status, obl.Deadline, false, now)

	case types.StatusFailed:
		// Terminal. Annotated for display, never stuck.
		state.Severity, state.SeverityReason = severity.Classify(obl.Status, obl.Deadline, false, now)
		state.DaysStale = daysStale

	case types.StatusSubmitted:
		// Parallel rule: a submitted obligation waiting too long on an
		// external verifier is stale, not structurally blocked.
		state.DaysStale = daysStale
		if daysStale >= s.staleDays {
			reason := rules.StuckExternalVerificationPending
			state.Stuck = true
			state.StuckReason = &reason
			state.Chain = traceChain(obl.ID, depGraph, overrideSet, byID)
		}
		_, state.IsDeadlocked = deadlocked[obl.ID]
		state.Severity, state.SeverityReason = severity.Classify(obl.Status, obl.Deadline, state.Stuck, now)

	default: // pending, blocked
		state.DaysStale = daysStale
		_, isDeadlocked := deadlocked[obl.ID]
		state.IsDeadlocked = isDeadlocked

		deadlinePassed := obl.Deadline != nil && obl.Deadline.Before(now)
		needsProof := obl.ProofRequired && !hasKey(withProof, obl.ID)

		unmetCount, overriddenCount := 0, 0
		for _, depID := range depGraph[obl.ID] {
			dep := byID[depID]
			if dep == nil || dep.Status == types.StatusVerified {
				continue
			}
			if _, ok := overrideSet[depEdge{from: obl.ID, to: depID}]; ok {
				overriddenCount++
			} else {
				unmetCount++
			}
		}

		// Dominant reason, fixed priority. Exactly one is reported. A
		// deadlock surfaces through is_deadlocked; its persisted reason
		// stays unmet_dependency (the taxonomy has no deadlock entry).
		var reason string
		structurallyBlocked := true
		switch {
		case isDeadlocked:
			reason = rules.StuckUnmetDependency
		case deadlinePassed:
			reason = rules.StuckHardDeadlinePassed
		case unmetCount > 0:
			reason = rules.StuckUnmetDependency
		case needsProof:
			reason = rules.StuckMissingProof
		case overriddenCount > 0:
			reason = rules.StuckOverriddenDependency
		default:
			structurallyBlocked = false
		}

		state.Stuck = structurallyBlocked && daysStale >= s.staleDays
		if state.Stuck {
			state.StuckReason = &reason
		}
		state.Chain = traceChain(obl.ID, depGraph, overrideSet, byID)
		state.Severity, state.SeverityReason = severity.Classify(obl.Status, obl.Deadline, state.Stuck, now)
	}

	// First detection pins stuck_since; clearing resets it.
	if state.Stuck {
		if obl.Stuck && obl.StuckSince != nil {
			state.StuckSince = obl.StuckSince
		} else {
			t := now
			state.StuckSince = &t
		}
	}
	if string(state.Severity) == obl.Severity && obl.SeveritySince != nil {
		state.SeveritySince = obl.SeveritySince
	} else {
		t := now
		state.SeveritySince = &t
	}

	return state
}

// persistIfChanged writes annotations only when they differ from what is
// stored, so re-running the batch with no underlying change writes nothing.
// The one status write severity may trigger: failed severity on a
// non-terminal obligation records the failure.
func (s *stuckService) persistIfChanged(ctx context.Context, obl *types.Obligation, state ObligationStuckState, now time.Time) error {
	shouldFail := state.Severity == severity.Failed && !obl.Status.Terminal()

	changed := obl.Stuck != state.Stuck ||
		!strPtrEqual(obl.StuckReason, state.StuckReason) ||
		obl.Severity != string(state.Severity) ||
		obl.SeverityReason != state.SeverityReason ||
		shouldFail
	if !changed {
		return nil
	}

	fields := map[string]interface{}{
		"stuck":           state.Stuck,
		"stuck_reason":    state.StuckReason,
		"stuck_since":     state.StuckSince,
		"severity":        string(state.Severity),
		"severity_reason": state.SeverityReason,
		"severity_since":  state.SeveritySince,
	}
	if shouldFail {
		fields["status"] = types.StatusFailed
		fields["status_changed_at"] = now
	}
	return s.obligationRepo.UpdateAnnotations(ctx, nil, obl.ID, fields)
}

func (s *stuckService) daysSinceStatusChange(obl *types.Obligation, now time.Time) int {
	changed := obl.StatusChangedAt
	if changed.IsZero() {
		changed = obl.CreatedAt
	}
	if changed.IsZero() || changed.After(now) {
		return 0
	}
	return int(now.Sub(changed).Hours() / 24)
}

func hasKey(set map[uuid.UUID]struct{}, id uuid.UUID) bool {
	_, ok := set[id]
	return ok
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
