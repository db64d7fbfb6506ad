package halls

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a halls repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTerminal(ctx context.Context, row *models.Terminal) (*models.Terminal, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) FindTerminal(ctx context.Context, id uuid.UUID) (*models.Terminal, error) {
	var row models.Terminal
	err := r.db.WithContext(ctx).
		Preload("Halls").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListTerminals(ctx context.Context) ([]models.Terminal, error) {
	var rows []models.Terminal
	err := r.db.WithContext(ctx).
		Preload("Halls").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateHall(ctx context.Context, row *models.Hall) (*models.Hall, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) FindHall(ctx context.Context, id uuid.UUID) (*models.Hall, error) {
	var row models.Hall
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListHalls(ctx context.Context, terminalID uuid.UUID) ([]models.Hall, error) {
	var rows []models.Hall
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", terminalID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
