package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObligationDependency is a directed "must complete before" edge:
// the obligation cannot advance until the one it depends on is verified.
type ObligationDependency struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ObligationID          uuid.UUID `gorm:"type:uuid;not null;index:idx_obligation_dependency_edge,unique,priority:1" json:"obligation_id"`
	DependsOnObligationID uuid.UUID `gorm:"type:uuid;not null;index:idx_obligation_dependency_edge,unique,priority:2" json:"depends_on_obligation_id"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`
}

func (ObligationDependency) TableName() string { return "obligation_dependency" }

func (d *ObligationDependency) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
