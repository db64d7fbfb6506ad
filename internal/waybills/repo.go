package waybills

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a waybills repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateWaybill(ctx context.Context, row *models.Waybill) (*models.Waybill, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) FindWaybill(ctx context.Context, id uuid.UUID) (*models.Waybill, error) {
	var row models.Waybill
	err := r.db.WithContext(ctx).
		Preload("Cargo").
		Preload("Appointment").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.Waybill, error) {
	var row models.Waybill
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	q := r.db.WithContext(ctx).
		Model(&models.Waybill{}).
		Joins("JOIN appointments ON appointments.id = waybills.appointment_id").
		Where("appointments.freight_id = ?", freightID).
		Preload("Cargo")

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where("(waybills.created_at, waybills.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Waybill
	if err := q.Order("waybills.created_at DESC, waybills.id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := &List{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	out.Waybills = rows
	return out, nil
}
