package announcements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an announcements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateAnnouncement(ctx context.Context, row *models.HallAnnouncement) (*models.HallAnnouncement, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) FindAnnouncement(ctx context.Context, id uuid.UUID) (*models.HallAnnouncement, error) {
	var row models.HallAnnouncement
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByCargo(ctx context.Context, cargoID uuid.UUID) (*models.HallAnnouncement, error) {
	var row models.HallAnnouncement
	err := r.db.WithContext(ctx).
		Where("cargo_id = ?", cargoID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) UpdateAnnouncement(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.HallAnnouncement{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListVisibleInHall returns the announcements drivers may request: not
// suspended, not expired, and with the cargo still in the announced status.
func (r *repository) ListVisibleInHall(ctx context.Context, hallID uuid.UUID, params pagination.Params) (*List, error) {
	q := r.db.WithContext(ctx).
		Model(&models.HallAnnouncement{}).
		Joins("JOIN cargos ON cargos.id = hall_announcements.cargo_id").
		Where("hall_announcements.hall_id = ?", hallID).
		Where("hall_announcements.is_suspended = ?", false).
		Where("hall_announcements.expires_at IS NULL OR hall_announcements.expires_at > ?", time.Now()).
		Where("cargos.status = ?", enums.CargoStatusAnnouncedToHall).
		Preload("Cargo")
	return r.list(ctx, q, params)
}

func (r *repository) ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error) {
	q := r.db.WithContext(ctx).
		Model(&models.HallAnnouncement{}).
		Where("hall_announcements.freight_id = ?", freightID).
		Preload("Cargo")
	return r.list(ctx, q, params)
}

func (r *repository) list(ctx context.Context, q *gorm.DB, params pagination.Params) (*List, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		q = q.Where("(hall_announcements.created_at, hall_announcements.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.HallAnnouncement
	if err := q.Order("hall_announcements.created_at DESC, hall_announcements.id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := &List{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		out.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	out.Announcements = rows
	return out, nil
}
