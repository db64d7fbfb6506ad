package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

// Repository defines persistence operations for appointments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateAppointment(ctx context.Context, row *models.Appointment) (*models.Appointment, error)
	FindAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	FindAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	HasOpenRequest(ctx context.Context, cargoID, driverID uuid.UUID) (bool, error)
	HasActiveLoad(ctx context.Context, driverID uuid.UUID) (bool, error)
	HasWaybill(ctx context.Context, appointmentID uuid.UUID) (bool, error)
	CancelOtherPending(ctx context.Context, cargoID, keepID uuid.UUID) error
	UpdateAppointment(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListPendingByCargo(ctx context.Context, cargoID uuid.UUID) ([]models.Appointment, error)
	LastConfirmedDate(ctx context.Context, driverID, excludeAppointmentID uuid.UUID) (*time.Time, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*List, error)
	ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error)
}
