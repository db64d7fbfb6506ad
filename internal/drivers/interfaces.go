package drivers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

// Repository defines persistence operations for driver profiles and vehicles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateDriver(ctx context.Context, row *models.DriverProfile) (*models.DriverProfile, error)
	FindDriver(ctx context.Context, id uuid.UUID) (*models.DriverProfile, error)
	FindDriverByUser(ctx context.Context, userID uuid.UUID) (*models.DriverProfile, error)
	UpdateDriver(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListDrivers(ctx context.Context, params pagination.Params) (*List, error)
	AddVehicle(ctx context.Context, row *models.Vehicle) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, driverID uuid.UUID) ([]models.Vehicle, error)
}

// List wraps a page of driver profiles plus the next cursor.
type List struct {
	Drivers    []models.DriverProfile `json:"drivers"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}
