package halls

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
)

// Repository defines persistence operations for terminals and halls.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTerminal(ctx context.Context, row *models.Terminal) (*models.Terminal, error)
	FindTerminal(ctx context.Context, id uuid.UUID) (*models.Terminal, error)
	ListTerminals(ctx context.Context) ([]models.Terminal, error)
	CreateHall(ctx context.Context, row *models.Hall) (*models.Hall, error)
	FindHall(ctx context.Context, id uuid.UUID) (*models.Hall, error)
	ListHalls(ctx context.Context, terminalID uuid.UUID) ([]models.Hall, error)
}

// TerminalInput creates a terminal.
type TerminalInput struct {
	Name     string
	Province string
	City     string
}

// HallInput creates a hall inside an existing terminal.
type HallInput struct {
	TerminalID uuid.UUID
	Name       string
	Province   string
}
