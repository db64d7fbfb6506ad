package announcements

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/internal/cargo"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the hall announcement gate: posting accepted cargo into a
// hall and pausing/resuming driver visibility.
type Service interface {
	Announce(ctx context.Context, input AnnounceInput) (*models.HallAnnouncement, error)
	Suspend(ctx context.Context, input SuspendInput) (*models.HallAnnouncement, error)
	Resume(ctx context.Context, input ResumeInput) (*models.HallAnnouncement, error)
	Get(ctx context.Context, id uuid.UUID) (*models.HallAnnouncement, error)
	VisibleInHall(ctx context.Context, hallID uuid.UUID, params pagination.Params) (*List, error)
	ListForFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error)
}

type service struct {
	repo      Repository
	cargos    cargo.Repository
	lifecycle cargo.Lifecycle
	tx        txRunner
	auditor   audit.Recorder
}

// NewService builds the announcement gate service.
func NewService(repo Repository, cargos cargo.Repository, lifecycle cargo.Lifecycle, tx txRunner, auditor audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("announcements repository required")
	}
	if cargos == nil {
		return nil, fmt.Errorf("cargo repository required")
	}
	if lifecycle == nil {
		return nil, fmt.Errorf("cargo lifecycle required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:      repo,
		cargos:    cargos,
		lifecycle: lifecycle,
		tx:        tx,
		auditor:   auditor,
	}, nil
}

func (s *service) Announce(ctx context.Context, input AnnounceInput) (*models.HallAnnouncement, error) {
	if input.FreightID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "freight context missing")
	}
	if input.HallID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hall id required")
	}

	var out *models.HallAnnouncement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cargoRow, err := s.cargos.WithTx(tx).FindCargoForUpdate(ctx, input.CargoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
		}
		if cargoRow.FreightID == nil || *cargoRow.FreightID != input.FreightID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cargo does not belong to freight company")
		}
		if cargoRow.Fare == nil {
			return pkgerrors.New(pkgerrors.CodeFareMissing, "fare must be set before announcing")
		}
		if cargoRow.Status != enums.CargoStatusAcceptedByFreight {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cargo is not in an announceable state")
		}

		row := models.HallAnnouncement{
			CargoID:   cargoRow.ID,
			HallID:    input.HallID,
			FreightID: input.FreightID,
			ExpiresAt: input.ExpiresAt,
		}
		if _, err := s.repo.WithTx(tx).CreateAnnouncement(ctx, &row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create announcement")
		}

		if _, err := s.lifecycle.Transition(ctx, tx, cargoRow.ID, enums.CargoStatusAnnouncedToHall, input.ActorUserID, ""); err != nil {
			return err
		}

		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     input.ActorUserID,
			Action:     "announcement.create",
			EntityType: "hall_announcement",
			EntityID:   row.ID,
			Meta:       map[string]any{"cargo_id": cargoRow.ID.String(), "hall_id": input.HallID.String()},
		}); err != nil {
			return err
		}

		out = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Suspend hides the announcement from drivers without touching cargo status.
func (s *service) Suspend(ctx context.Context, input SuspendInput) (*models.HallAnnouncement, error) {
	return s.setSuspended(ctx, input.AnnouncementID, input.FreightID, input.ActorUserID, true, input.Note)
}

// Resume restores driver visibility for a suspended announcement.
func (s *service) Resume(ctx context.Context, input ResumeInput) (*models.HallAnnouncement, error) {
	return s.setSuspended(ctx, input.AnnouncementID, input.FreightID, input.ActorUserID, false, "")
}

func (s *service) setSuspended(ctx context.Context, announcementID, freightID, actorUserID uuid.UUID, suspended bool, note string) (*models.HallAnnouncement, error) {
	var out *models.HallAnnouncement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindAnnouncement(ctx, announcementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "announcement not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load announcement")
		}
		if row.FreightID != freightID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "announcement does not belong to freight company")
		}
		if row.IsSuspended == suspended {
			out = row
			return nil
		}

		updates := map[string]any{"is_suspended": suspended}
		if suspended {
			updates["suspend_note"] = note
		} else {
			updates["suspend_note"] = nil
		}
		if err := repo.UpdateAnnouncement(ctx, row.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update announcement")
		}

		action := "announcement.resume"
		if suspended {
			action = "announcement.suspend"
		}
		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     actorUserID,
			Action:     action,
			EntityType: "hall_announcement",
			EntityID:   row.ID,
			Meta:       map[string]any{"note": note},
		}); err != nil {
			return err
		}

		row.IsSuspended = suspended
		if suspended {
			row.SuspendNote = &note
		} else {
			row.SuspendNote = nil
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.HallAnnouncement, error) {
	row, err := s.repo.FindAnnouncement(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "announcement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load announcement")
	}
	return row, nil
}

func (s *service) VisibleInHall(ctx context.Context, hallID uuid.UUID, params pagination.Params) (*List, error) {
	return s.repo.ListVisibleInHall(ctx, hallID, params)
}

func (s *service) ListForFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error) {
	return s.repo.ListByFreight(ctx, freightID, params)
}
