package models

import (
	"time"

	"github.com/google/uuid"
)

// Waybill is the loading document for exactly one appointment; its existence
// gates the cargo's move into IN_TRANSIT.
type Waybill struct {
	ID            uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WaybillNumber string       `gorm:"column:waybill_number;not null;uniqueIndex" json:"waybill_number"`
	CargoID       uuid.UUID    `gorm:"column:cargo_id;type:uuid;not null;index" json:"cargo_id"`
	AppointmentID uuid.UUID    `gorm:"column:appointment_id;type:uuid;not null;uniqueIndex" json:"appointment_id"`
	IssuedBy      uuid.UUID    `gorm:"column:issued_by;type:uuid;not null" json:"issued_by"`
	IssuedAt      time.Time    `gorm:"column:issued_at;not null" json:"issued_at"`
	Cargo         *Cargo       `gorm:"foreignKey:CargoID" json:"cargo,omitempty"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
