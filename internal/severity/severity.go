// Package severity classifies obligation urgency. Classify is a pure
// function and a shared contract: identical inputs produce identical output
// wherever it runs. Understate early, overstate late.
package severity

import (
	"time"

	"github.com/yungbote/obligo-backend/internal/rules"
	"github.com/yungbote/obligo-backend/internal/types"
)

type Level string

const (
	Normal   Level = "normal"
	Elevated Level = "elevated"
	High     Level = "high"
	Critical Level = "critical"
	Failed   Level = "failed"
)

const (
	ReasonVerified                 = "verified"
	ReasonDeadlinePassed           = "deadline_passed"
	ReasonStuckDeadlineImminent    = "stuck_deadline_imminent"
	ReasonDeadlineImminent         = "deadline_imminent"
	ReasonStuckDeadlineApproaching = "stuck_deadline_approaching"
	ReasonDeadlineApproaching      = "deadline_approaching"
	ReasonStuckNoDeadlinePressure  = "stuck_no_deadline_pressure"
	ReasonNoPressure               = "no_pressure"
)

// Classify maps (status, deadline, stuck, now) to a severity level and
// reason code. Rules are ordered; the first match wins.
func Classify(status types.ObligationStatus, deadline *time.Time, stuck bool, now time.Time) (Level, string) {
	if status == types.StatusVerified {
		return Normal, ReasonVerified
	}
	if status == types.StatusFailed {
		return Failed, ReasonDeadlinePassed
	}

	if deadline != nil {
		daysRemaining := deadline.Sub(now).Hours() / 24

		if daysRemaining < 0 {
			return Failed, ReasonDeadlinePassed
		}
		if daysRemaining <= rules.SeverityHighDays && stuck {
			return Critical, ReasonStuckDeadlineImminent
		}
		if daysRemaining <= rules.SeverityHighDays {
			return High, ReasonDeadlineImminent
		}
		if stuck && daysRemaining <= rules.SeverityStuckHighDays {
			return High, ReasonStuckDeadlineApproaching
		}
		if daysRemaining <= rules.SeverityElevatedDays {
			return Elevated, ReasonDeadlineApproaching
		}
	}

	if stuck {
		return Elevated, ReasonStuckNoDeadlinePressure
	}
	return Normal, ReasonNoPressure
}
