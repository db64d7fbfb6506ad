package cargo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cargo repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCargo(ctx context.Context, cargo *models.Cargo) (*models.Cargo, error) {
	if err := r.db.WithContext(ctx).Create(cargo).Error; err != nil {
		return nil, err
	}
	return cargo, nil
}

func (r *repository) CreateStatusHistory(ctx context.Context, row *models.CargoStatusHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) FindCargo(ctx context.Context, id uuid.UUID) (*models.Cargo, error) {
	var cargo models.Cargo
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&cargo).Error
	if err != nil {
		return nil, err
	}
	return &cargo, nil
}

// FindCargoForUpdate locks the cargo row so concurrent transitions serialize
// on the same cargo.
func (r *repository) FindCargoForUpdate(ctx context.Context, id uuid.UUID) (*models.Cargo, error) {
	var cargo models.Cargo
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&cargo).Error
	if err != nil {
		return nil, err
	}
	return &cargo, nil
}

func (r *repository) FindCargoByReference(ctx context.Context, referenceCode string) (*models.Cargo, error) {
	var cargo models.Cargo
	err := r.db.WithContext(ctx).
		Where("reference_code = ?", referenceCode).
		First(&cargo).Error
	if err != nil {
		return nil, err
	}
	return &cargo, nil
}

func (r *repository) UpdateCargo(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Cargo{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListByProducer(ctx context.Context, producerID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	q := r.db.WithContext(ctx).Model(&models.Cargo{}).Where("producer_id = ?", producerID)
	return r.list(ctx, q, params, filters)
}

func (r *repository) ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	q := r.db.WithContext(ctx).Model(&models.Cargo{}).Where("freight_id = ?", freightID)
	return r.list(ctx, q, params, filters)
}

// ListSubmitted returns the unassigned backlog any freight company may accept.
func (r *repository) ListSubmitted(ctx context.Context, params pagination.Params) (*List, error) {
	q := r.db.WithContext(ctx).Model(&models.Cargo{}).
		Where("status = ?", enums.CargoStatusSubmitted).
		Where("freight_id IS NULL")
	return r.list(ctx, q, params, Filters{})
}

func (r *repository) list(ctx context.Context, q *gorm.DB, params pagination.Params, filters Filters) (*List, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.IsUrgent != nil {
		q = q.Where("is_urgent = ?", *filters.IsUrgent)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Cargo
	if err := q.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := &List{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	out.Cargos = rows
	return out, nil
}

func (r *repository) ListHistory(ctx context.Context, cargoID uuid.UUID) ([]models.CargoStatusHistory, error) {
	var rows []models.CargoStatusHistory
	err := r.db.WithContext(ctx).
		Where("cargo_id = ?", cargoID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
