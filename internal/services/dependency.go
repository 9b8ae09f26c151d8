package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/domain"
	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/repos"
	"github.com/yungbote/obligo-backend/internal/rules"
	"github.com/yungbote/obligo-backend/internal/types"
)

// BlockerInfo describes one prerequisite in dependency evaluation output.
type BlockerInfo struct {
	ObligationID uuid.UUID              `json:"obligation_id"`
	Type         types.ObligationType   `json:"type"`
	Title        string                 `json:"title"`
	Status       types.ObligationStatus `json:"status"`
	Institution  string                 `json:"institution,omitempty"`
	Deadline     *time.Time             `json:"deadline,omitempty"`
}

// OverriddenDep is a prerequisite whose edge no longer blocks because of an
// override. It is surfaced, never hidden: overrides remove blocks, not
// accountability.
type OverriddenDep struct {
	BlockerInfo
	OverriddenAt time.Time `json:"overridden_at"`
}

type ObligationDependencyState struct {
	ObligationID   uuid.UUID                   `json:"obligation_id"`
	Type           types.ObligationType        `json:"type"`
	Title          string                      `json:"title"`
	Status         types.ObligationStatus      `json:"status"`
	IsBlocked      bool                        `json:"is_blocked"`
	Blockers       []BlockerInfo               `json:"blockers"`
	OverriddenDeps []OverriddenDep             `json:"overridden_deps"`
	Overrides      []*types.ObligationOverride `json:"overrides"`
}

type EvaluateResult struct {
	Obligations  []ObligationDependencyState `json:"obligations"`
	EdgesCreated int                         `json:"dependencies_created"`
}

type DependencyService interface {
	// Evaluate derives edges from the static prerequisite map for every
	// obligation the user owns, then reports blocked state. Idempotent:
	// re-running on an unchanged set creates zero edges.
	Evaluate(ctx context.Context, userID uuid.UUID) (*EvaluateResult, error)
	// CreateDependency adds a manual edge for orderings the static map
	// doesn't cover.
	CreateDependency(ctx context.Context, obligationID, userID, dependsOnID uuid.UUID) (*types.ObligationDependency, error)
}

type dependencyService struct {
	db             *gorm.DB
	log            *logger.Logger
	obligationRepo repos.ObligationRepo
	dependencyRepo repos.DependencyRepo
	overrideRepo   repos.OverrideRepo
}

func NewDependencyService(db *gorm.DB, baseLog *logger.Logger, obligationRepo repos.ObligationRepo, dependencyRepo repos.DependencyRepo, overrideRepo repos.OverrideRepo) DependencyService {
	serviceLog := baseLog.With("service", "DependencyService")
	return &dependencyService{
		db:             db,
		log:            serviceLog,
		obligationRepo: obligationRepo,
		dependencyRepo: dependencyRepo,
		overrideRepo:   overrideRepo,
	}
}

func (s *dependencyService) Evaluate(ctx context.Context, userID uuid.UUID) (*EvaluateResult, error) {
	all, err := s.obligationRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return &EvaluateResult{Obligations: []ObligationDependencyState{}}, nil
	}

	// Bucket by school context, then by type within each bucket.
	bySchoolType := make(map[string]map[types.ObligationType][]*types.Obligation)
	for _, obl := range all {
		key := rules.SchoolKey(obl.SourceRef)
		if bySchoolType[key] == nil {
			bySchoolType[key] = make(map[types.ObligationType][]*types.Obligation)
		}
		bySchoolType[key][obl.Type] = append(bySchoolType[key][obl.Type], obl)
	}

	oblIDs := make([]uuid.UUID, 0, len(all))
	for _, obl := range all {
		oblIDs = append(oblIDs, obl.ID)
	}

	existing, err := s.dependencyRepo.GetByObligationIDs(ctx, nil, oblIDs)
	if err != nil {
		return nil, err
	}
	existingEdges := make(map[depEdge]struct{}, len(existing))
	for _, d := range existing {
		existingEdges[depEdge{from: d.ObligationID, to: d.DependsOnObligationID}] = struct{}{}
	}

	var toCreate []*types.ObligationDependency
	for _, obl := range all {
		schoolKey := rules.SchoolKey(obl.SourceRef)
		hasEnrollmentDeposit := len(bySchoolType[schoolKey][types.TypeEnrollmentDeposit]) > 0
		requiredTypes := rules.RequiredTypes(obl.Type, hasEnrollmentDeposit)

		for _, reqType := range requiredTypes {
			candidates := bySchoolType[schoolKey][reqType]
			// No in-context candidate: fall back to the context-free bucket.
			if len(candidates) == 0 && schoolKey != rules.NoSchoolKey {
				candidates = bySchoolType[rules.NoSchoolKey][reqType]
			}
			for _, prereq := range candidates {
				edge := depEdge{from: obl.ID, to: prereq.ID}
				if _, ok := existingEdges[edge]; ok {
					continue
				}
				toCreate = append(toCreate, &types.ObligationDependency{
					ObligationID:          obl.ID,
					DependsOnObligationID: prereq.ID,
				})
				existingEdges[edge] = struct{}{}
			}
		}
	}

	edgesCreated := 0
	if len(toCreate) > 0 {
		// Insert-if-absent: concurrent evaluations racing on the same edge
		// are resolved at the storage layer. Failures here must not abort
		// the read-back below.
		n, err := s.dependencyRepo.CreateIfAbsent(ctx, nil, toCreate)
		if err != nil {
			s.log.Warn("Dependency edge creation failed, continuing with existing edges", "error", err, "user_id", userID)
		} else {
			edgesCreated = n
		}
	}

	allDeps, err := s.dependencyRepo.GetByObligationIDs(ctx, nil, oblIDs)
	if err != nil {
		return nil, err
	}
	allOverrides, err := s.overrideRepo.GetByObligationIDs(ctx, nil, oblIDs)
	if err != nil {
		return nil, err
	}

	overrideSet := make(map[depEdge]*types.ObligationOverride, len(allOverrides))
	overridesByObl := make(map[uuid.UUID][]*types.ObligationOverride)
	for _, ov := range allOverrides {
		overrideSet[depEdge{from: ov.ObligationID, to: ov.OverriddenDependencyID}] = ov
		overridesByObl[ov.ObligationID] = append(overridesByObl[ov.ObligationID], ov)
	}

	depMap := make(map[uuid.UUID][]uuid.UUID)
	for _, d := range allDeps {
		depMap[d.ObligationID] = append(depMap[d.ObligationID], d.DependsOnObligationID)
	}
	byID := make(map[uuid.UUID]*types.Obligation, len(all))
	for _, obl := range all {
		byID[obl.ID] = obl
	}

	states := make([]ObligationDependencyState, 0, len(all))
	for _, obl := range all {
		blockers := []BlockerInfo{}
		overriddenDeps := []OverriddenDep{}
		for _, depID := range depMap[obl.ID] {
			dep := byID[depID]
			if dep == nil || dep.Status == types.StatusVerified {
				continue
			}
			if ov, ok := overrideSet[depEdge{from: obl.ID, to: depID}]; ok {
				overriddenDeps = append(overriddenDeps, OverriddenDep{
					BlockerInfo:  blockerInfo(dep),
					OverriddenAt: ov.CreatedAt,
				})
			} else {
				blockers = append(blockers, blockerInfo(dep))
			}
		}
		overrides := overridesByObl[obl.ID]
		if overrides == nil {
			overrides = []*types.ObligationOverride{}
		}
		states = append(states, ObligationDependencyState{
			ObligationID:   obl.ID,
			Type:           obl.Type,
			Title:          obl.Title,
			Status:         obl.Status,
			IsBlocked:      len(blockers) > 0,
			Blockers:       blockers,
			OverriddenDeps: overriddenDeps,
			Overrides:      overrides,
		})
	}

	return &EvaluateResult{Obligations: states, EdgesCreated: edgesCreated}, nil
}

func (s *dependencyService) CreateDependency(ctx context.Context, obligationID, userID, dependsOnID uuid.UUID) (*types.ObligationDependency, error) {
	if obligationID == dependsOnID {
		return nil, domain.Validation(domain.CodeSelfReference, "an obligation cannot depend on itself")
	}

	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}
	dep, err := s.obligationRepo.GetByIDForUser(ctx, nil, dependsOnID, userID)
	if err != nil {
		return nil, err
	}
	if dep == nil {
		return nil, domain.NotFound("dependency obligation")
	}

	row := &types.ObligationDependency{
		ObligationID:          obligationID,
		DependsOnObligationID: dependsOnID,
	}
	n, err := s.dependencyRepo.CreateIfAbsent(ctx, nil, []*types.ObligationDependency{row})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.Conflict(domain.CodeDuplicateDependency, "dependency already exists")
	}

	s.log.Info("Dependency edge created", "obligation_id", obligationID, "depends_on_obligation_id", dependsOnID)
	return row, nil
}

func blockerInfo(dep *types.Obligation) BlockerInfo {
	return BlockerInfo{
		ObligationID: dep.ID,
		Type:         dep.Type,
		Title:        dep.Title,
		Status:       dep.Status,
		Institution:  rules.SchoolContext(dep.SourceRef),
		Deadline:     dep.Deadline,
	}
}
