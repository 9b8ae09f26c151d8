package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
)

// ObligationStep is an ordered sub-step. Types with a step plan cannot be
// verified until every step is completed, and steps complete in order.
type ObligationStep struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ObligationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"obligation_id"`
	Label        string     `gorm:"not null" json:"label"`
	Position     int        `gorm:"not null" json:"position"`
	Status       StepStatus `gorm:"not null;default:'pending'" json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

func (ObligationStep) TableName() string { return "obligation_step" }

func (s *ObligationStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StepPending
	}
	return nil
}
