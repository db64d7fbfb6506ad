package appointments

import (
	"context"
	"errors"
	"time"

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

// NewRepository builds an appointments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateAppointment(ctx context.Context, row *models.Appointment) (*models.Appointment, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) FindAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var row models.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var row models.Appointment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// HasOpenRequest reports whether the driver already has a PENDING or
// CONFIRMED appointment for this cargo.
func (r *repository) HasOpenRequest(ctx context.Context, cargoID, driverID uuid.UUID) (bool, error) {
	var row models.Appointment
	err := r.db.WithContext(ctx).
		Where("cargo_id = ? AND driver_id = ?", cargoID, driverID).
		Where("status IN ?", []enums.AppointmentStatus{enums.AppointmentStatusPending, enums.AppointmentStatusConfirmed}).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasActiveLoad reports whether the driver holds a CONFIRMED appointment
// whose cargo is currently being carried.
func (r *repository) HasActiveLoad(ctx context.Context, driverID uuid.UUID) (bool, error) {
	var row models.Appointment
	err := r.db.WithContext(ctx).
		Joins("JOIN cargos ON cargos.id = appointments.cargo_id").
		Where("appointments.driver_id = ?", driverID).
		Where("appointments.status = ?", enums.AppointmentStatusConfirmed).
		Where("cargos.status IN ?", []enums.CargoStatus{enums.CargoStatusDriverAssigned, enums.CargoStatusInTransit}).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repository) HasWaybill(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	var row models.Waybill
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CancelOtherPending forecloses every competing PENDING request for the cargo.
func (r *repository) CancelOtherPending(ctx context.Context, cargoID, keepID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("cargo_id = ? AND id <> ?", cargoID, keepID).
		Where("status = ?", enums.AppointmentStatusPending).
		Update("status", enums.AppointmentStatusCancelled).Error
}

func (r *repository) UpdateAppointment(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListPendingByCargo(ctx context.Context, cargoID uuid.UUID) ([]models.Appointment, error) {
	var rows []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Driver.User").
		Where("cargo_id = ?", cargoID).
		Where("status = ?", enums.AppointmentStatusPending).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LastConfirmedDate returns the scheduled date of the driver's most recent
// other CONFIRMED appointment, or nil when the driver has never been served.
func (r *repository) LastConfirmedDate(ctx context.Context, driverID, excludeAppointmentID uuid.UUID) (*time.Time, error) {
	var row models.Appointment
	q := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Where("status = ?", enums.AppointmentStatusConfirmed).
		Where("appointment_date IS NOT NULL")
	if excludeAppointmentID != uuid.Nil {
		q = q.Where("id <> ?", excludeAppointmentID)
	}
	err := q.Order("appointment_date DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.AppointmentDate, nil
}

func (r *repository) ListByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*List, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("appointments.driver_id = ?", driverID).
		Preload("Cargo")
	return r.list(ctx, q, params)
}

func (r *repository) ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("appointments.freight_id = ?", freightID).
		Preload("Cargo").
		Preload("Driver")
	return r.list(ctx, q, params)
}

func (r *repository) list(ctx context.Context, q *gorm.DB, params pagination.Params) (*List, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where("(appointments.created_at, appointments.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Appointment
	if err := q.Order("appointments.created_at DESC, appointments.id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := &List{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	out.Appointments = rows
	return out, nil
}
