package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freightport/terminal-backend/pkg/enums"
)

// Cargo is a single shipment request moving through the lifecycle. A bulk
// submission with a truck count produces N independent Cargo rows, each with
// its own reference code; they are not linked to each other.
type Cargo struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReferenceCode  string                 `gorm:"column:reference_code;not null;uniqueIndex" json:"reference_code"`
	ProducerID     uuid.UUID              `gorm:"column:producer_id;type:uuid;not null;index" json:"producer_id"`
	FreightID      *uuid.UUID             `gorm:"column:freight_id;type:uuid;index" json:"freight_id,omitempty"`
	OriginProvince string                 `gorm:"column:origin_province;not null" json:"origin_province"`
	OriginCity     string                 `gorm:"column:origin_city;not null" json:"origin_city"`
	DestProvince   string                 `gorm:"column:dest_province;not null" json:"dest_province"`
	DestCity       string                 `gorm:"column:dest_city;not null" json:"dest_city"`
	CargoType      string                 `gorm:"column:cargo_type;not null" json:"cargo_type"`
	Weight         float64                `gorm:"column:weight;not null" json:"weight"`
	Unit           string                 `gorm:"column:unit;not null;default:'ton'" json:"unit"`
	Fare           *decimal.Decimal       `gorm:"column:fare;type:numeric(14,2)" json:"fare,omitempty"`
	IsUrgent       bool                   `gorm:"column:is_urgent;not null;default:false" json:"is_urgent"`
	Description    *string                `gorm:"column:description" json:"description,omitempty"`
	LoadingAt      *time.Time             `gorm:"column:loading_at" json:"loading_at,omitempty"`
	Status         enums.CargoStatus      `gorm:"column:status;type:text;not null;default:'DRAFT'" json:"status"`
	RejectionNote  *string                `gorm:"column:rejection_note" json:"rejection_note,omitempty"`
	Producer       *ProducerProfile       `gorm:"foreignKey:ProducerID" json:"producer,omitempty"`
	Freight        *FreightCompanyProfile `gorm:"foreignKey:FreightID" json:"freight,omitempty"`
	StatusHistory  []CargoStatusHistory   `gorm:"foreignKey:CargoID;constraint:OnDelete:CASCADE" json:"status_history,omitempty"`
	Announcements  []HallAnnouncement     `gorm:"foreignKey:CargoID;constraint:OnDelete:CASCADE" json:"announcements,omitempty"`
	Appointments   []Appointment          `gorm:"foreignKey:CargoID;constraint:OnDelete:CASCADE" json:"appointments,omitempty"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// CargoStatusHistory is the append-only ledger of status changes. Rows are
// never updated or deleted; FromStatus is nil only for the creation entry.
type CargoStatusHistory struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CargoID    uuid.UUID          `gorm:"column:cargo_id;type:uuid;not null;index" json:"cargo_id"`
	FromStatus *enums.CargoStatus `gorm:"column:from_status;type:text" json:"from_status,omitempty"`
	ToStatus   enums.CargoStatus  `gorm:"column:to_status;type:text;not null" json:"to_status"`
	ChangedBy  uuid.UUID          `gorm:"column:changed_by;type:uuid;not null" json:"changed_by"`
	Note       string             `gorm:"column:note;not null;default:''" json:"note"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
