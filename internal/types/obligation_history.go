package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventReattemptCreated     = "reattempt_created"
	EventPropagationUnblocked = "propagation_unblocked"
)

// ObligationHistoryEvent is an append-only audit entry. Never mutated,
// never deleted.
type ObligationHistoryEvent struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ObligationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"obligation_id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	EventType    string         `gorm:"not null" json:"event_type"`
	Reason       string         `gorm:"not null" json:"reason"`
	ActorUserID  uuid.UUID      `gorm:"type:uuid;not null" json:"actor_user_id"`
	Meta         datatypes.JSON `json:"meta,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (ObligationHistoryEvent) TableName() string { return "obligation_history" }

func (e *ObligationHistoryEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
