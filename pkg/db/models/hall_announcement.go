package models

import (
	"time"

	"github.com/google/uuid"
)

// HallAnnouncement binds an announced cargo to a hall. Suspension hides the
// cargo from drivers without touching the cargo's own status.
type HallAnnouncement struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CargoID     uuid.UUID              `gorm:"column:cargo_id;type:uuid;not null;index" json:"cargo_id"`
	HallID      uuid.UUID              `gorm:"column:hall_id;type:uuid;not null;index" json:"hall_id"`
	FreightID   uuid.UUID              `gorm:"column:freight_id;type:uuid;not null" json:"freight_id"`
	IsSuspended bool                   `gorm:"column:is_suspended;not null;default:false" json:"is_suspended"`
	SuspendNote *string                `gorm:"column:suspend_note" json:"suspend_note,omitempty"`
	ExpiresAt   *time.Time             `gorm:"column:expires_at" json:"expires_at,omitempty"`
	Cargo       *Cargo                 `gorm:"foreignKey:CargoID" json:"cargo,omitempty"`
	Hall        *Hall                  `gorm:"foreignKey:HallID" json:"hall,omitempty"`
	Freight     *FreightCompanyProfile `gorm:"foreignKey:FreightID" json:"freight,omitempty"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
