package announcements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

// Repository defines persistence operations for hall announcements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateAnnouncement(ctx context.Context, row *models.HallAnnouncement) (*models.HallAnnouncement, error)
	FindAnnouncement(ctx context.Context, id uuid.UUID) (*models.HallAnnouncement, error)
	FindByCargo(ctx context.Context, cargoID uuid.UUID) (*models.HallAnnouncement, error)
	UpdateAnnouncement(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListVisibleInHall(ctx context.Context, hallID uuid.UUID, params pagination.Params) (*List, error)
	ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error)
}

// AnnounceInput carries a freight company's request to post a cargo in a hall.
type AnnounceInput struct {
	CargoID     uuid.UUID
	HallID      uuid.UUID
	FreightID   uuid.UUID
	ActorUserID uuid.UUID
	ExpiresAt   *time.Time
}

// SuspendInput toggles an announcement's visibility off with a reason.
type SuspendInput struct {
	AnnouncementID uuid.UUID
	FreightID      uuid.UUID
	ActorUserID    uuid.UUID
	Note           string
}

// ResumeInput toggles a suspended announcement back on.
type ResumeInput struct {
	AnnouncementID uuid.UUID
	FreightID      uuid.UUID
	ActorUserID    uuid.UUID
}

// List wraps a page of announcements plus the next cursor.
type List struct {
	Announcements []models.HallAnnouncement `json:"announcements"`
	NextCursor    string                    `json:"next_cursor,omitempty"`
}
