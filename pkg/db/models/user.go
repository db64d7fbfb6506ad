package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/pkg/enums"
)

// User is an authenticated account; role decides which profile row accompanies it.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Phone        string         `gorm:"column:phone;not null;uniqueIndex" json:"phone"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	PasswordHash string         `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null" json:"role"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
