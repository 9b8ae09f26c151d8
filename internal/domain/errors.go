package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes carried to callers. Machine-readable; messages are for humans.
const (
	CodeInvalidStatus        = "invalid_status"
	CodeInvalidType          = "invalid_type"
	CodeInvalidSource        = "invalid_source"
	CodeInvalidProofType     = "invalid_proof_type"
	CodeEmptyReason          = "empty_reason"
	CodeEmptySourceRef       = "empty_source_ref"
	CodeEmptyTitle           = "empty_title"
	CodeSelfReference        = "self_reference"
	CodeNotConfirmation      = "not_confirmation_email"
	CodeNoDependencyEdge     = "no_dependency_edge"
	CodeDependencyVerified   = "dependency_already_verified"
	CodeIrreversibleStatus   = "irreversible_status"
	CodeUnmetDependencies    = "unmet_dependencies"
	CodeMissingProof         = "missing_proof"
	CodeIncompleteSteps      = "incomplete_steps"
	CodeStepOutOfOrder       = "step_out_of_order"
	CodeDuplicateOverride    = "duplicate_override"
	CodeDuplicateDependency  = "duplicate_dependency"
	CodeMissingDeadline      = "missing_deadline"
	CodeDeadlineNotPassed    = "deadline_not_passed"
	CodeNotFailed            = "not_failed"
	CodeConcurrentTransition = "concurrent_transition"
)

// Blocker names one unverified prerequisite in a ConflictError so callers
// can render it verbatim.
type Blocker struct {
	ObligationID uuid.UUID `json:"obligation_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
}

// ValidationError: malformed or missing input. Rejected before any read of
// stored state.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(code, format string, args ...interface{}) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError: the record doesn't exist or isn't owned by the caller.
// The two cases are indistinguishable on purpose.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ConflictError: the request is well-formed but the current state forbids
// it. Blockers is populated for dependency-gate rejections.
type ConflictError struct {
	Code     string
	Message  string
	Blockers []Blocker
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(code, format string, args ...interface{}) error {
	return &ConflictError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func ConflictWithBlockers(code, message string, blockers []Blocker) error {
	return &ConflictError{Code: code, Message: message, Blockers: blockers}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
