package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/obligo-backend/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation_maps_to_400",
			err:        domain.Validation(domain.CodeEmptyReason, "reason is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeEmptyReason,
		},
		{
			name:       "not_found_maps_to_404",
			err:        domain.NotFound("obligation"),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "conflict_maps_to_409",
			err:        domain.Conflict(domain.CodeIrreversibleStatus, "irreversible"),
			wantStatus: http.StatusConflict,
			wantCode:   domain.CodeIrreversibleStatus,
		},
		{
			name:       "unknown_maps_to_500",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			RespondDomainError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d", rec.Code, tc.wantStatus)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if env.Error.Code != tc.wantCode {
				t.Fatalf("code=%q, want %q", env.Error.Code, tc.wantCode)
			}
			if env.Error.Message == "" {
				t.Fatal("message must not be empty")
			}
		})
	}
}

func TestRespondDomainErrorCarriesBlockers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	blockerID := uuid.New()
	err := domain.ConflictWithBlockers(domain.CodeUnmetDependencies, "blocked", []domain.Blocker{
		{ObligationID: blockerID, Type: "APPLICATION_FEE", Title: "Pay fee", Status: "pending"},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondDomainError(c, err)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d, want 409", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(env.Error.Blockers) != 1 || env.Error.Blockers[0].ObligationID != blockerID {
		t.Fatalf("blockers=%v, want the one blocker surfaced", env.Error.Blockers)
	}
}
