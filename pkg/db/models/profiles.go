package models

import (
	"time"

	"github.com/google/uuid"
)

// ProducerProfile holds producer-specific attributes for a user.
type ProducerProfile struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	CompanyName *string   `gorm:"column:company_name" json:"company_name,omitempty"`
	Address     *string   `gorm:"column:address" json:"address,omitempty"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// FreightCompanyProfile holds freight-company attributes for a user.
type FreightCompanyProfile struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	CompanyName   *string   `gorm:"column:company_name" json:"company_name,omitempty"`
	LicenseNumber *string   `gorm:"column:license_number" json:"license_number,omitempty"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// DriverProfile holds driver attributes, including the cancellation ban window.
// While CancelBanUntil is in the future the driver may not request new cargo.
type DriverProfile struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	LicenseNumber  *string    `gorm:"column:license_number" json:"license_number,omitempty"`
	CancelBanUntil *time.Time `gorm:"column:cancel_ban_until" json:"cancel_ban_until,omitempty"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Vehicles       []Vehicle  `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE" json:"vehicles,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Vehicle is a truck registered to a driver.
type Vehicle struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DriverID    uuid.UUID `gorm:"column:driver_id;type:uuid;not null;index" json:"driver_id"`
	Plate       string    `gorm:"column:plate;not null" json:"plate"`
	VehicleType string    `gorm:"column:vehicle_type;not null" json:"vehicle_type"`
	CapacityTon *float64  `gorm:"column:capacity_ton" json:"capacity_ton,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
