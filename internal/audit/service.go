package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

// Filters narrow the audit listing.
type Filters struct {
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
}

// List wraps a page of audit rows plus the next cursor.
type List struct {
	Entries    []models.AuditLog `json:"entries"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// Service exposes the read side of the audit trail.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the audit read service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &service{db: db}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filters.UserID != nil {
		q = q.Where("user_id = ?", *filters.UserID)
	}
	if filters.Action != "" {
		q = q.Where("action = ?", filters.Action)
	}
	if filters.EntityType != "" {
		q = q.Where("entity_type = ?", filters.EntityType)
	}
	if filters.EntityID != nil {
		q = q.Where("entity_id = ?", *filters.EntityID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit logs")
	}

	out := &List{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	out.Entries = rows
	return out, nil
}
