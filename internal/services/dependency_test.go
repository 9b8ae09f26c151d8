package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/obligo-backend/internal/domain"
	"github.com/yungbote/obligo-backend/internal/types"
)

func TestEvaluateCreatesMappedEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	fee := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationFee, SourceRef: "school:stanford"})
	app := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationSubmission, SourceRef: "school:stanford"})

	res, err := env.dependencySvc.Evaluate(ctx, userID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.EdgesCreated != 1 {
		t.Fatalf("EdgesCreated=%d, want 1", res.EdgesCreated)
	}

	var appState *ObligationDependencyState
	for i := range res.Obligations {
		if res.Obligations[i].ObligationID == app.ID {
			appState = &res.Obligations[i]
		}
	}
	if appState == nil {
		t.Fatal("application submission missing from result")
	}
	if !appState.IsBlocked {
		t.Fatal("application submission should be blocked by the unverified fee")
	}
	if len(appState.Blockers) != 1 || appState.Blockers[0].ObligationID != fee.ID {
		t.Fatalf("blockers=%v, want the application fee", appState.Blockers)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationFee, SourceRef: "school:osu"})
	env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationSubmission, SourceRef: "school:osu"})

	first, err := env.dependencySvc.Evaluate(ctx, userID)
	if err != nil {
		t.Fatalf("first Evaluate: %v", err)
	}
	if first.EdgesCreated != 1 {
		t.Fatalf("first EdgesCreated=%d, want 1", first.EdgesCreated)
	}

	second, err := env.dependencySvc.Evaluate(ctx, userID)
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if second.EdgesCreated != 0 {
		t.Fatalf("second EdgesCreated=%d, want 0 on an unchanged set", second.EdgesCreated)
	}
}

func TestEvaluateScopesEdgesToSchoolContext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	feeStanford := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationFee, SourceRef: "school:stanford"})
	env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationFee, SourceRef: "school:umich"})
	app := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationSubmission, SourceRef: "school:stanford"})

	if _, err := env.dependencySvc.Evaluate(ctx, userID); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	deps, err := env.dependency.GetByObligationID(ctx, nil, app.ID)
	if err != nil {
		t.Fatalf("GetByObligationID: %v", err)
	}
	if len(deps) != 1 || deps[0].DependsOnObligationID != feeStanford.ID {
		t.Fatalf("deps=%v, want only the same-school fee", deps)
	}
}

func TestEvaluateFallsBackToContextFreeBucket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	// FAFSA has no school context; enrollment is school-scoped. With no
	// in-context FAFSA the context-free one still gates enrollment.
	fafsa := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeFAFSA, SourceRef: "manual"})
	enrollment := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeEnrollment, SourceRef: "school:osu"})

	if _, err := env.dependencySvc.Evaluate(ctx, userID); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	deps, err := env.dependency.GetByObligationID(ctx, nil, enrollment.ID)
	if err != nil {
		t.Fatalf("GetByObligationID: %v", err)
	}
	if len(deps) != 1 || deps[0].DependsOnObligationID != fafsa.ID {
		t.Fatalf("deps=%v, want the context-free FAFSA", deps)
	}
}

func TestEvaluateHousingDepositConditionalRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Without an enrollment deposit in context: housing requires acceptance.
	userA := uuid.New()
	acceptance := env.mustCreate(t, &types.Obligation{UserID: userA, Type: types.TypeAcceptance, SourceRef: "school:osu"})
	housingA := env.mustCreate(t, &types.Obligation{UserID: userA, Type: types.TypeHousingDeposit, SourceRef: "school:osu"})

	if _, err := env.dependencySvc.Evaluate(ctx, userA); err != nil {
		t.Fatalf("Evaluate userA: %v", err)
	}
	deps, err := env.dependency.GetByObligationID(ctx, nil, housingA.ID)
	if err != nil {
		t.Fatalf("GetByObligationID: %v", err)
	}
	if len(deps) != 1 || deps[0].DependsOnObligationID != acceptance.ID {
		t.Fatalf("deps=%v, want acceptance", deps)
	}

	// With an enrollment deposit in the same context: that takes precedence.
	userB := uuid.New()
	env.mustCreate(t, &types.Obligation{UserID: userB, Type: types.TypeAcceptance, SourceRef: "school:umich"})
	enrollDep := env.mustCreate(t, &types.Obligation{UserID: userB, Type: types.TypeEnrollmentDeposit, SourceRef: "school:umich"})
	housingB := env.mustCreate(t, &types.Obligation{UserID: userB, Type: types.TypeHousingDeposit, SourceRef: "school:umich"})

	if _, err := env.dependencySvc.Evaluate(ctx, userB); err != nil {
		t.Fatalf("Evaluate userB: %v", err)
	}
	deps, err = env.dependency.GetByObligationID(ctx, nil, housingB.ID)
	if err != nil {
		t.Fatalf("GetByObligationID: %v", err)
	}
	if len(deps) != 1 || deps[0].DependsOnObligationID != enrollDep.ID {
		t.Fatalf("deps=%v, want the enrollment deposit", deps)
	}
}

func TestEvaluateSurfacesOverriddenDeps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	fee := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationFee, SourceRef: "school:osu"})
	app := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationSubmission, SourceRef: "school:osu"})

	if _, err := env.dependencySvc.Evaluate(ctx, userID); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if _, err := env.overrideSvc.Create(ctx, app.ID, userID, fee.ID, "fee waiver granted"); err != nil {
		t.Fatalf("Create override: %v", err)
	}

	res, err := env.dependencySvc.Evaluate(ctx, userID)
	if err != nil {
		t.Fatalf("Evaluate after override: %v", err)
	}
	for _, st := range res.Obligations {
		if st.ObligationID != app.ID {
			continue
		}
		if st.IsBlocked {
			t.Fatal("overridden edge should not block")
		}
		if len(st.Blockers) != 0 {
			t.Fatalf("blockers=%v, want none", st.Blockers)
		}
		if len(st.OverriddenDeps) != 1 || st.OverriddenDeps[0].ObligationID != fee.ID {
			t.Fatalf("overridden_deps=%v, want the fee surfaced", st.OverriddenDeps)
		}
		return
	}
	t.Fatal("application submission missing from result")
}

func TestEvaluateEmptySet(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.dependencySvc.Evaluate(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Obligations) != 0 || res.EdgesCreated != 0 {
		t.Fatalf("res=%+v, want empty", res)
	}
}

func TestCreateDependencyRejectsSelfReference(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()

	_, err := env.dependencySvc.CreateDependency(context.Background(), id, uuid.New(), id)
	if !domain.IsValidation(err) {
		t.Fatalf("err=%v, want validation error", err)
	}
}

func TestCreateDependencyRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	a := env.mustCreate(t, &types.Obligation{UserID: owner, Type: types.TypeFAFSA})
	b := env.mustCreate(t, &types.Obligation{UserID: owner, Type: types.TypeScholarship})

	_, err := env.dependencySvc.CreateDependency(ctx, a.ID, stranger, b.ID)
	if !domain.IsNotFound(err) {
		t.Fatalf("err=%v, want not found for a non-owner", err)
	}
}

func TestCreateDependencyDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	a := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeScholarshipDisbursement})
	b := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeScholarship})

	if _, err := env.dependencySvc.CreateDependency(ctx, a.ID, userID, b.ID); err != nil {
		t.Fatalf("first CreateDependency: %v", err)
	}
	_, err := env.dependencySvc.CreateDependency(ctx, a.ID, userID, b.ID)
	if !domain.IsConflict(err) {
		t.Fatalf("err=%v, want conflict on duplicate edge", err)
	}
}
