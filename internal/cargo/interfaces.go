package cargo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

// Repository defines persistence operations for cargo tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCargo(ctx context.Context, cargo *models.Cargo) (*models.Cargo, error)
	CreateStatusHistory(ctx context.Context, row *models.CargoStatusHistory) error
	FindCargo(ctx context.Context, id uuid.UUID) (*models.Cargo, error)
	FindCargoForUpdate(ctx context.Context, id uuid.UUID) (*models.Cargo, error)
	FindCargoByReference(ctx context.Context, referenceCode string) (*models.Cargo, error)
	UpdateCargo(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListByProducer(ctx context.Context, producerID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	ListSubmitted(ctx context.Context, params pagination.Params) (*List, error)
	ListHistory(ctx context.Context, cargoID uuid.UUID) ([]models.CargoStatusHistory, error)
}
