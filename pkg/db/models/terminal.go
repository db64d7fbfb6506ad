package models

import (
	"time"

	"github.com/google/uuid"
)

// Terminal is a physical freight terminal hosting one or more loading halls.
type Terminal struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Province  string    `gorm:"column:province;not null" json:"province"`
	City      string    `gorm:"column:city;not null" json:"city"`
	Halls     []Hall    `gorm:"foreignKey:TerminalID;constraint:OnDelete:CASCADE" json:"halls,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// Hall is a loading hall where announced cargo becomes visible to drivers.
type Hall struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TerminalID uuid.UUID `gorm:"column:terminal_id;type:uuid;not null;index" json:"terminal_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	Province   string    `gorm:"column:province;not null" json:"province"`
	Terminal   *Terminal `gorm:"foreignKey:TerminalID" json:"terminal,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
