package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObligationOverride is an append-only audited exception. It suppresses one
// dependency edge from block computation. It never changes the dependency
// itself or the prerequisite's status. No update or delete path exists.
type ObligationOverride struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObligationID           uuid.UUID `gorm:"type:uuid;not null;index:idx_obligation_override_edge,unique,priority:1" json:"obligation_id"`
	OverriddenDependencyID uuid.UUID `gorm:"type:uuid;not null;index:idx_obligation_override_edge,unique,priority:2" json:"overridden_dependency_id"`
	UserID                 uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	UserReason             string    `gorm:"not null" json:"user_reason"`
	CreatedAt              time.Time `gorm:"not null" json:"created_at"`
}

func (ObligationOverride) TableName() string { return "obligation_override" }

func (o *ObligationOverride) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
