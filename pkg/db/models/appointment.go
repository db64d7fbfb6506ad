package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/pkg/enums"
)

// Appointment is a driver's claim on a cargo. At most one PENDING or
// CONFIRMED row may exist per (cargo, driver) pair, and approving one claim
// cancels every sibling PENDING claim for the same cargo.
type Appointment struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CargoID         uuid.UUID               `gorm:"column:cargo_id;type:uuid;not null;index" json:"cargo_id"`
	DriverID        uuid.UUID               `gorm:"column:driver_id;type:uuid;not null;index" json:"driver_id"`
	FreightID       uuid.UUID               `gorm:"column:freight_id;type:uuid;not null;index" json:"freight_id"`
	Status          enums.AppointmentStatus `gorm:"column:status;type:text;not null;default:'PENDING'" json:"status"`
	AppointmentDate *time.Time              `gorm:"column:appointment_date" json:"appointment_date,omitempty"`
	Note            *string                 `gorm:"column:note" json:"note,omitempty"`
	SMSSent         bool                    `gorm:"column:sms_sent;not null;default:false" json:"sms_sent"`
	Cargo           *Cargo                  `gorm:"foreignKey:CargoID" json:"cargo,omitempty"`
	Driver          *DriverProfile          `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	Freight         *FreightCompanyProfile  `gorm:"foreignKey:FreightID" json:"freight,omitempty"`
	Waybill         *Waybill                `gorm:"foreignKey:AppointmentID" json:"waybill,omitempty"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
