package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProofType string

const (
	ProofReceipt           ProofType = "receipt"
	ProofConfirmationEmail ProofType = "confirmation_email"
	ProofPortalScreenshot  ProofType = "portal_screenshot"
	ProofFileUpload        ProofType = "file_upload"
)

func ValidProofType(s string) bool {
	switch ProofType(s) {
	case ProofReceipt, ProofConfirmationEmail, ProofPortalScreenshot, ProofFileUpload:
		return true
	}
	return false
}

// ObligationProof is an append-only evidence record. One or more proofs
// satisfy the verification gate when the obligation requires proof.
type ObligationProof struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObligationID uuid.UUID `gorm:"type:uuid;not null;index" json:"obligation_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type         ProofType `gorm:"not null" json:"type"`
	SourceRef    string    `gorm:"column:source_ref;not null" json:"source_ref"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (ObligationProof) TableName() string { return "obligation_proof" }

func (p *ObligationProof) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
