// Package rules holds the immutable lookup tables the obligation engine
// runs on: required-prerequisite types, propagation targets, staleness and
// severity thresholds, step plans. Loaded once, never mutated at runtime.
//
// The dependency map is deliberately hardcoded. A hardcoded map can be
// audited in thirty seconds; an inferred graph cannot. If there is doubt,
// block.
package rules

import (
	"strings"

	"github.com/yungbote/obligo-backend/internal/types"
)

// StaleDaysDefault: an obligation with no status change for this many days
// is stale. Conservative on purpose.
const StaleDaysDefault = 5

// ChainMaxDepth bounds dependency-chain tracing.
const ChainMaxDepth = 10

// Severity thresholds in days remaining.
const (
	SeverityHighDays      = 3
	SeverityStuckHighDays = 7
	SeverityElevatedDays  = 14
)

// NoSchoolKey is the sentinel bucket for obligations without an extractable
// institutional context. A deliberate, documented bucket — not a fallback
// into fuzzy matching.
const NoSchoolKey = "__no_school__"

// DependencyMap: type -> required prerequisite types. These are the only
// valid ordering constraints. Do not add entries without a real-world
// justification. Do not infer edges from data.
var DependencyMap = map[types.ObligationType][]types.ObligationType{
	types.TypeApplicationSubmission:   {types.TypeApplicationFee},
	types.TypeHousingDeposit:          {types.TypeAcceptance},
	types.TypeScholarshipDisbursement: {types.TypeScholarship},
	types.TypeEnrollment:              {types.TypeFAFSA},
	types.TypeScholarshipAcceptance:   {types.TypeAcceptance},
}

// PropagationMap: verified type -> dependent types eligible for unblocking.
// Exact rules only. Propagation removes blocks; it never advances progress.
var PropagationMap = map[types.ObligationType][]types.ObligationType{
	types.TypeApplicationSubmission: {types.TypeHousingDeposit},
	types.TypeFAFSA:                 {types.TypeScholarship},
}

// RequiredTypes returns the prerequisite types for an obligation type.
// One conditional rule exists: HOUSING_DEPOSIT requires ENROLLMENT_DEPOSIT
// when one exists in the same context, otherwise ACCEPTANCE.
func RequiredTypes(oblType types.ObligationType, hasEnrollmentDepositInContext bool) []types.ObligationType {
	if oblType == types.TypeHousingDeposit {
		if hasEnrollmentDepositInContext {
			return []types.ObligationType{types.TypeEnrollmentDeposit}
		}
		return []types.ObligationType{types.TypeAcceptance}
	}
	return DependencyMap[oblType]
}

// SchoolContext extracts the institutional context key from a source_ref of
// the form "school:<id>:...". Empty string when none.
func SchoolContext(sourceRef string) string {
	if !strings.HasPrefix(sourceRef, "school:") {
		return ""
	}
	parts := strings.Split(sourceRef, ":")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1]
	}
	return ""
}

// SchoolKey is SchoolContext with the sentinel bucket applied.
func SchoolKey(sourceRef string) string {
	if ctx := SchoolContext(sourceRef); ctx != "" {
		return ctx
	}
	return NoSchoolKey
}

// StepPlans: types whose verification is gated on ordered sub-steps, with
// the default plan seeded at creation.
var StepPlans = map[types.ObligationType][]string{
	types.TypeFAFSA: {
		"Gather tax and income documents",
		"Create or recover FSA ID",
		"Complete and submit the FAFSA form",
		"Review the Student Aid Report",
	},
	types.TypeScholarship: {
		"Confirm eligibility requirements",
		"Collect recommendation letters",
		"Write and revise essays",
		"Submit the scholarship application",
	},
}

// StepsGated reports whether a type requires its step plan completed before
// verification.
func StepsGated(oblType types.ObligationType) bool {
	_, ok := StepPlans[oblType]
	return ok
}

// Stuck reason taxonomy. Exact list. Do not invent new categories.
const (
	StuckUnmetDependency             = "unmet_dependency"
	StuckOverriddenDependency        = "overridden_dependency"
	StuckMissingProof                = "missing_proof"
	StuckExternalVerificationPending = "external_verification_pending"
	StuckHardDeadlinePassed          = "hard_deadline_passed"
)

// confirmationKeywords is the conservative receipt/confirmation heuristic.
// False negatives are tolerated; false positives are not.
var confirmationKeywords = []string{
	"confirmation",
	"confirmed",
	"receipt",
	"payment received",
	"we received",
	"we have received",
	"received your",
	"successfully submitted",
	"submission received",
	"application received",
	"deposit received",
	"thank you for your submission",
	"thank you for submitting",
}

// LooksLikeConfirmation reports whether an email's subject/snippet/summary
// reads like a receipt or confirmation. If it's not clearly a confirmation,
// it is refused.
func LooksLikeConfirmation(subject, snippet, summary string) bool {
	text := strings.ToLower(subject + " " + snippet + " " + summary)
	for _, k := range confirmationKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
