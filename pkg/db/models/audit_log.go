package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/pkg/types"
)

// AuditLog records one significant action; rows are write-once.
type AuditLog struct {
	ID         uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID     `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Action     string        `gorm:"column:action;not null;index" json:"action"`
	EntityType string        `gorm:"column:entity_type;not null" json:"entity_type"`
	EntityID   uuid.UUID     `gorm:"column:entity_id;type:uuid;not null;index" json:"entity_id"`
	Meta       types.JSONMap `gorm:"column:meta;type:jsonb;serializer:json" json:"meta,omitempty"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
