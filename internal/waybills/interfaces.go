package waybills

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

// Repository defines persistence operations for waybills.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateWaybill(ctx context.Context, row *models.Waybill) (*models.Waybill, error)
	FindWaybill(ctx context.Context, id uuid.UUID) (*models.Waybill, error)
	FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.Waybill, error)
	ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error)
}

// IssueInput creates the loading document for a confirmed appointment.
type IssueInput struct {
	AppointmentID uuid.UUID
	FreightID     uuid.UUID
	ActorUserID   uuid.UUID
}

// List wraps a page of waybills plus the next cursor.
type List struct {
	Waybills   []models.Waybill `json:"waybills"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
