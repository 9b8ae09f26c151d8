package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ObligationStatus string

const (
	StatusPending   ObligationStatus = "pending"
	StatusSubmitted ObligationStatus = "submitted"
	StatusVerified  ObligationStatus = "verified"
	StatusBlocked   ObligationStatus = "blocked"
	StatusFailed    ObligationStatus = "failed"
)

// failed and verified are terminal. No status mutation past either.
func (s ObligationStatus) Terminal() bool {
	return s == StatusFailed || s == StatusVerified
}

func ValidObligationStatus(s string) bool {
	switch ObligationStatus(s) {
	case StatusPending, StatusSubmitted, StatusVerified, StatusBlocked, StatusFailed:
		return true
	}
	return false
}

type ObligationType string

const (
	TypeFAFSA                   ObligationType = "FAFSA"
	TypeApplicationFee          ObligationType = "APPLICATION_FEE"
	TypeApplicationSubmission   ObligationType = "APPLICATION_SUBMISSION"
	TypeHousingDeposit          ObligationType = "HOUSING_DEPOSIT"
	TypeScholarship             ObligationType = "SCHOLARSHIP"
	TypeAcceptance              ObligationType = "ACCEPTANCE"
	TypeScholarshipDisbursement ObligationType = "SCHOLARSHIP_DISBURSEMENT"
	TypeEnrollment              ObligationType = "ENROLLMENT"
	TypeEnrollmentDeposit       ObligationType = "ENROLLMENT_DEPOSIT"
	TypeScholarshipAcceptance   ObligationType = "SCHOLARSHIP_ACCEPTANCE"
)

var obligationTypes = map[ObligationType]struct{}{
	TypeFAFSA:                   {},
	TypeApplicationFee:          {},
	TypeApplicationSubmission:   {},
	TypeHousingDeposit:          {},
	TypeScholarship:             {},
	TypeAcceptance:              {},
	TypeScholarshipDisbursement: {},
	TypeEnrollment:              {},
	TypeEnrollmentDeposit:       {},
	TypeScholarshipAcceptance:   {},
}

func ValidObligationType(s string) bool {
	_, ok := obligationTypes[ObligationType(s)]
	return ok
}

type ObligationSource string

const (
	SourceEmail  ObligationSource = "email"
	SourceManual ObligationSource = "manual"
	SourceIntake ObligationSource = "intake"
)

func ValidObligationSource(s string) bool {
	switch ObligationSource(s) {
	case SourceEmail, SourceManual, SourceIntake:
		return true
	}
	return false
}

type Obligation struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type          ObligationType   `gorm:"not null;index" json:"type"`
	Title         string           `gorm:"not null" json:"title"`
	Source        ObligationSource `gorm:"not null" json:"source"`
	SourceRef     string           `gorm:"column:source_ref" json:"source_ref"`
	Deadline      *time.Time       `json:"deadline,omitempty"`
	Status        ObligationStatus `gorm:"not null;default:'pending';index" json:"status"`
	ProofRequired bool             `gorm:"not null;default:false" json:"proof_required"`

	// Derived annotations, recomputed idempotently by the stuck/severity batch.
	Stuck          bool       `gorm:"not null;default:false" json:"stuck"`
	StuckReason    *string    `json:"stuck_reason,omitempty"`
	StuckSince     *time.Time `json:"stuck_since,omitempty"`
	Severity       string     `gorm:"not null;default:'normal'" json:"severity"`
	SeverityReason string     `gorm:"not null;default:'no_pressure'" json:"severity_reason"`
	SeveritySince  *time.Time `json:"severity_since,omitempty"`

	// Set only via reattempt creation.
	PriorFailedObligationID *uuid.UUID `gorm:"type:uuid" json:"prior_failed_obligation_id,omitempty"`

	StatusChangedAt time.Time `gorm:"not null" json:"status_changed_at"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (Obligation) TableName() string { return "obligation" }

func (o *Obligation) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.StatusChangedAt.IsZero() {
		o.StatusChangedAt = time.Now().UTC()
	}
	return nil
}
