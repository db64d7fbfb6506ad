package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/types"
)

// Entry captures one auditable action before persistence.
type Entry struct {
	UserID     uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Meta       types.JSONMap
}

// Recorder persists audit entries inside the caller's transaction so the
// audit row commits or rolls back together with the action it describes.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

type recorder struct{}

// NewRecorder returns the default audit recorder.
func NewRecorder() Recorder {
	return recorder{}
}

func (recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for audit record")
	}
	row := models.AuditLog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Meta:       entry.Meta,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write audit log")
	}
	return nil
}
