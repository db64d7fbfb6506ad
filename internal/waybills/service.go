package waybills

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/appointments"
	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/pkg/db"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns waybill issuance. Issuing never changes cargo status; the
// document's existence is consulted when the driver begins transit.
type Service interface {
	Issue(ctx context.Context, input IssueInput) (*models.Waybill, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Waybill, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.Waybill, error)
	ListForFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error)
}

type service struct {
	repo    Repository
	appts   appointments.Repository
	tx      txRunner
	auditor audit.Recorder
}

// NewService builds the waybill issuance service.
func NewService(repo Repository, appts appointments.Repository, tx txRunner, auditor audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("waybills repository required")
	}
	if appts == nil {
		return nil, fmt.Errorf("appointments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, appts: appts, tx: tx, auditor: auditor}, nil
}

func (s *service) Issue(ctx context.Context, input IssueInput) (*models.Waybill, error) {
	var out *models.Waybill
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		appt, err := s.appts.WithTx(tx).FindAppointmentForUpdate(ctx, input.AppointmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
		}
		if appt.FreightID != input.FreightID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to freight company")
		}
		if appt.Status != enums.AppointmentStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "waybill requires a confirmed appointment")
		}

		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByAppointment(ctx, appt.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "waybill already issued for this appointment")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing waybill")
		}

		number, err := newWaybillNumber()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate waybill number")
		}
		row := models.Waybill{
			WaybillNumber: number,
			CargoID:       appt.CargoID,
			AppointmentID: appt.ID,
			IssuedBy:      input.ActorUserID,
			IssuedAt:      time.Now(),
		}
		if _, err := repo.CreateWaybill(ctx, &row); err != nil {
			if db.IsUniqueViolation(err, "idx_waybills_appointment") {
				return pkgerrors.New(pkgerrors.CodeConflict, "waybill already issued for this appointment")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create waybill")
		}

		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     input.ActorUserID,
			Action:     "waybill.issue",
			EntityType: "waybill",
			EntityID:   row.ID,
			Meta:       map[string]any{"appointment_id": appt.ID.String(), "waybill_number": number},
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

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Waybill, error) {
	row, err := s.repo.FindWaybill(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "waybill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load waybill")
	}
	return row, nil
}

func (s *service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.Waybill, error) {
	row, err := s.repo.FindByAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "waybill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load waybill")
	}
	return row, nil
}

func (s *service) ListForFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error) {
	return s.repo.ListByFreight(ctx, freightID, params)
}

func newWaybillNumber() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "WB-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
