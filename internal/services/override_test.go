package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/obligo-backend/internal/domain"
	"github.com/yungbote/obligo-backend/internal/types"
)

func TestOverrideCreateRequiresReason(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.overrideSvc.Create(context.Background(), uuid.New(), uuid.New(), uuid.New(), "   ")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Code != domain.CodeEmptyReason {
		t.Fatalf("err=%v, want empty reason validation", err)
	}
}

func TestOverrideCreateRejectsSelfReference(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()

	_, err := env.overrideSvc.Create(context.Background(), id, uuid.New(), id, "a reason")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Code != domain.CodeSelfReference {
		t.Fatalf("err=%v, want self reference validation", err)
	}
}

func TestOverrideCreateRequiresDependencyEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	a := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationSubmission})
	b := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationFee})

	_, err := env.overrideSvc.Create(ctx, a.ID, userID, b.ID, "no edge here")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Code != domain.CodeNoDependencyEdge {
		t.Fatalf("err=%v, want no-dependency-edge validation", err)
	}
}

func TestOverrideCreateRejectsVerifiedDependency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	dep := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationFee, Status: types.StatusVerified})
	obl := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationSubmission})
	env.mustEdge(t, obl.ID, dep.ID)

	_, err := env.overrideSvc.Create(ctx, obl.ID, userID, dep.ID, "pointless override")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Code != domain.CodeDependencyVerified {
		t.Fatalf("err=%v, want dependency-already-verified validation", err)
	}
}

func TestOverrideCreateAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	dep := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationFee})
	obl := env.mustCreate(t, &types.Obligation{UserID: userID, Type: types.TypeApplicationSubmission})
	env.mustEdge(t, obl.ID, dep.ID)

	row, err := env.overrideSvc.Create(ctx, obl.ID, userID, dep.ID, "fee waived by financial aid office")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if row.UserReason != "fee waived by financial aid office" {
		t.Fatalf("reason=%q, not stored verbatim", row.UserReason)
	}

	_, err = env.overrideSvc.Create(ctx, obl.ID, userID, dep.ID, "another reason")
	var ce *domain.ConflictError
	if !errors.As(err, &ce) || ce.Code != domain.CodeDuplicateOverride {
		t.Fatalf("err=%v, want duplicate override conflict", err)
	}

	// The original record is untouched.
	list, err := env.overrideSvc.List(ctx, obl.ID, userID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].UserReason != "fee waived by financial aid office" {
		t.Fatalf("list=%v, want only the first override", list)
	}
}

func TestOverrideListRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	obl := env.mustCreate(t, &types.Obligation{UserID: owner, Type: types.TypeAcceptance})

	_, err := env.overrideSvc.List(ctx, obl.ID, uuid.New())
	if !domain.IsNotFound(err) {
		t.Fatalf("err=%v, want not found for a non-owner", err)
	}
}
