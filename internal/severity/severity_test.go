package severity

import (
	"testing"
	"time"

	"github.com/yungbote/obligo-backend/internal/types"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deadlineIn := func(days float64) *time.Time {
		d := now.Add(time.Duration(days * 24 * float64(time.Hour)))
		return &d
	}

	cases := []struct {
		name       string
		status     types.ObligationStatus
		deadline   *time.Time
		stuck      bool
		wantLevel  Level
		wantReason string
	}{
		{
			name:       "verified_is_always_normal",
			status:     types.StatusVerified,
			deadline:   deadlineIn(-30),
			stuck:      true,
			wantLevel:  Normal,
			wantReason: ReasonVerified,
		},
		{
			name:       "failed_status_is_failed",
			status:     types.StatusFailed,
			deadline:   deadlineIn(20),
			wantLevel:  Failed,
			wantReason: ReasonDeadlinePassed,
		},
		{
			name:       "deadline_passed_is_failed",
			status:     types.StatusPending,
			deadline:   deadlineIn(-1),
			wantLevel:  Failed,
			wantReason: ReasonDeadlinePassed,
		},
		{
			name:       "deadline_passed_beats_stuck",
			status:     types.StatusBlocked,
			deadline:   deadlineIn(-0.5),
			stuck:      true,
			wantLevel:  Failed,
			wantReason: ReasonDeadlinePassed,
		},
		{
			name:       "imminent_and_stuck_is_critical",
			status:     types.StatusPending,
			deadline:   deadlineIn(2),
			stuck:      true,
			wantLevel:  Critical,
			wantReason: ReasonStuckDeadlineImminent,
		},
		{
			name:       "imminent_not_stuck_is_high",
			status:     types.StatusPending,
			deadline:   deadlineIn(2),
			wantLevel:  High,
			wantReason: ReasonDeadlineImminent,
		},
		{
			name:       "approaching_and_stuck_is_high",
			status:     types.StatusBlocked,
			deadline:   deadlineIn(5),
			stuck:      true,
			wantLevel:  High,
			wantReason: ReasonStuckDeadlineApproaching,
		},
		{
			name:       "approaching_not_stuck_is_elevated",
			status:     types.StatusPending,
			deadline:   deadlineIn(10),
			wantLevel:  Elevated,
			wantReason: ReasonDeadlineApproaching,
		},
		{
			name:       "far_deadline_stuck_is_elevated",
			status:     types.StatusPending,
			deadline:   deadlineIn(30),
			stuck:      true,
			wantLevel:  Elevated,
			wantReason: ReasonStuckNoDeadlinePressure,
		},
		{
			name:       "no_deadline_stuck_is_elevated",
			status:     types.StatusBlocked,
			stuck:      true,
			wantLevel:  Elevated,
			wantReason: ReasonStuckNoDeadlinePressure,
		},
		{
			name:       "no_deadline_not_stuck_is_normal",
			status:     types.StatusPending,
			wantLevel:  Normal,
			wantReason: ReasonNoPressure,
		},
		{
			name:       "far_deadline_not_stuck_is_normal",
			status:     types.StatusSubmitted,
			deadline:   deadlineIn(60),
			wantLevel:  Normal,
			wantReason: ReasonNoPressure,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			level, reason := Classify(tc.status, tc.deadline, tc.stuck, now)
			if level != tc.wantLevel || reason != tc.wantReason {
				t.Fatalf("Classify(%s, stuck=%v)=(%s, %s), want (%s, %s)",
					tc.status, tc.stuck, level, reason, tc.wantLevel, tc.wantReason)
			}
		})
	}
}

func TestClassifyBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Exactly 3 days out is still imminent; exactly 14 is still approaching.
	exactly := func(days int) *time.Time {
		d := now.AddDate(0, 0, days)
		return &d
	}

	if level, _ := Classify(types.StatusPending, exactly(3), false, now); level != High {
		t.Fatalf("3 days out = %s, want high", level)
	}
	if level, _ := Classify(types.StatusPending, exactly(7), true, now); level != High {
		t.Fatalf("stuck 7 days out = %s, want high", level)
	}
	if level, _ := Classify(types.StatusPending, exactly(14), false, now); level != Elevated {
		t.Fatalf("14 days out = %s, want elevated", level)
	}
	if level, _ := Classify(types.StatusPending, exactly(15), false, now); level != Normal {
		t.Fatalf("15 days out = %s, want normal", level)
	}
}
