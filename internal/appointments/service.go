package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/internal/cargo"
	"github.com/freightport/terminal-backend/internal/drivers"
	"github.com/freightport/terminal-backend/pkg/db"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type driverNotifier interface {
	AppointmentConfirmed(ctx context.Context, driverID uuid.UUID, referenceCode string) error
}

// Service is the driver allocation engine: it arbitrates competing driver
// claims on announced cargo and walks confirmed loads through transit.
type Service interface {
	RequestCargo(ctx context.Context, input RequestInput) (*models.Appointment, error)
	Approve(ctx context.Context, input ApproveInput) (*models.Appointment, error)
	Reject(ctx context.Context, input RejectInput) (*models.Appointment, error)
	CancelByDriver(ctx context.Context, input CancelByDriverInput) (*models.Appointment, error)
	DriverUpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Appointment, error)
	RankedRequests(ctx context.Context, cargoID, freightID uuid.UUID) ([]RankedRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*List, error)
	ListForFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error)
}

type service struct {
	repo        Repository
	cargos      cargo.Repository
	lifecycle   cargo.Lifecycle
	driverStore drivers.Repository
	tx          txRunner
	auditor     audit.Recorder
	notifier    driverNotifier
	banDuration time.Duration
}

// NewService builds the allocation engine. The notifier is optional.
func NewService(repo Repository, cargos cargo.Repository, lifecycle cargo.Lifecycle, driverStore drivers.Repository, tx txRunner, auditor audit.Recorder, notifier driverNotifier, banDuration time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("appointments repository required")
	}
	if cargos == nil {
		return nil, fmt.Errorf("cargo repository required")
	}
	if lifecycle == nil {
		return nil, fmt.Errorf("cargo lifecycle required")
	}
	if driverStore == nil {
		return nil, fmt.Errorf("drivers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if banDuration <= 0 {
		banDuration = 24 * time.Hour
	}
	return &service{
		repo:        repo,
		cargos:      cargos,
		lifecycle:   lifecycle,
		driverStore: driverStore,
		tx:          tx,
		auditor:     auditor,
		notifier:    notifier,
		banDuration: banDuration,
	}, nil
}

// RequestCargo runs the four admission checks in order (ban, busy, cargo
// state, duplicate) and creates a PENDING appointment when all pass.
func (s *service) RequestCargo(ctx context.Context, input RequestInput) (*models.Appointment, error) {
	if input.DriverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "driver context missing")
	}

	var out *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		driver, err := s.driverStore.WithTx(tx).FindDriver(ctx, input.DriverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		}
		if driver.CancelBanUntil != nil && driver.CancelBanUntil.After(time.Now()) {
			return pkgerrors.New(pkgerrors.CodeDriverBanned, "driver is banned from requesting cargo").
				WithDetails(map[string]any{"cancel_ban_until": driver.CancelBanUntil})
		}

		repo := s.repo.WithTx(tx)
		busy, err := repo.HasActiveLoad(ctx, input.DriverID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active load")
		}
		if busy {
			return pkgerrors.New(pkgerrors.CodeDriverBusy, "driver is already carrying a shipment")
		}

		cargoRow, err := s.cargos.WithTx(tx).FindCargo(ctx, input.CargoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
		}
		if cargoRow.Status != enums.CargoStatusAnnouncedToHall || cargoRow.FreightID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cargo is not open for requests")
		}

		duplicate, err := repo.HasOpenRequest(ctx, input.CargoID, input.DriverID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check duplicate request")
		}
		if duplicate {
			return pkgerrors.New(pkgerrors.CodeDuplicateRequest, "driver already requested this cargo")
		}

		row := models.Appointment{
			CargoID:   cargoRow.ID,
			DriverID:  input.DriverID,
			FreightID: *cargoRow.FreightID,
			Status:    enums.AppointmentStatusPending,
		}
		if _, err := repo.CreateAppointment(ctx, &row); err != nil {
			// The partial unique index backs the duplicate check under race.
			if db.IsUniqueViolation(err, "idx_appointments_cargo_driver_open") {
				return pkgerrors.New(pkgerrors.CodeDuplicateRequest, "driver already requested this cargo")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appointment")
		}

		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     input.ActorUserID,
			Action:     "appointment.request",
			EntityType: "appointment",
			EntityID:   row.ID,
			Meta:       map[string]any{"cargo_id": cargoRow.ID.String()},
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

// Approve confirms one pending request and forecloses all competitors for
// the same cargo in a single transaction.
func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.Appointment, error) {
	var out *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		appt, err := repo.FindAppointmentForUpdate(ctx, input.AppointmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
		}
		if appt.FreightID != input.FreightID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to freight company")
		}
		if appt.Status != enums.AppointmentStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "appointment is no longer pending")
		}

		// Locks the cargo and fails if another approval already moved it out
		// of ANNOUNCED_TO_HALL.
		cargoRow, err := s.lifecycle.Transition(ctx, tx, appt.CargoID, enums.CargoStatusDriverAssigned, input.ActorUserID, "")
		if err != nil {
			return err
		}

		if err := repo.CancelOtherPending(ctx, appt.CargoID, appt.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel competing requests")
		}

		// The appointment date is the producer's loading time, never a
		// driver-chosen one.
		date := time.Now()
		if cargoRow.LoadingAt != nil {
			date = *cargoRow.LoadingAt
		}
		updates := map[string]any{
			"status":           enums.AppointmentStatusConfirmed,
			"appointment_date": date,
		}
		if input.Note != nil {
			updates["note"] = *input.Note
		}
		if err := repo.UpdateAppointment(ctx, appt.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm appointment")
		}

		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     input.ActorUserID,
			Action:     "appointment.approve",
			EntityType: "appointment",
			EntityID:   appt.ID,
			Meta:       map[string]any{"cargo_id": appt.CargoID.String(), "driver_id": appt.DriverID.String()},
		}); err != nil {
			return err
		}

		appt.Status = enums.AppointmentStatusConfirmed
		appt.AppointmentDate = &date
		appt.Note = input.Note
		appt.Cargo = cargoRow
		out = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The confirmation SMS is sent after commit; a delivery failure leaves
	// sms_sent false but never rolls back the approval.
	if s.notifier != nil && out.Cargo != nil {
		if err := s.notifier.AppointmentConfirmed(ctx, out.DriverID, out.Cargo.ReferenceCode); err == nil {
			if err := s.repo.UpdateAppointment(ctx, out.ID, map[string]any{"sms_sent": true}); err == nil {
				out.SMSSent = true
			}
		}
	}
	return out, nil
}

// Reject cancels a pending request; the cargo stays announced.
func (s *service) Reject(ctx context.Context, input RejectInput) (*models.Appointment, error) {
	var out *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		appt, err := repo.FindAppointmentForUpdate(ctx, input.AppointmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
		}
		if appt.FreightID != input.FreightID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to freight company")
		}
		if appt.Status != enums.AppointmentStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "appointment is no longer pending")
		}

		if err := repo.UpdateAppointment(ctx, appt.ID, map[string]any{"status": enums.AppointmentStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel appointment")
		}
		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     input.ActorUserID,
			Action:     "appointment.reject",
			EntityType: "appointment",
			EntityID:   appt.ID,
		}); err != nil {
			return err
		}

		appt.Status = enums.AppointmentStatusCancelled
		out = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelByDriver withdraws a confirmed load: the cargo reopens to the hall
// and the driver takes the cancellation penalty.
func (s *service) CancelByDriver(ctx context.Context, input CancelByDriverInput) (*models.Appointment, error) {
	var out *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		appt, err := repo.FindAppointmentForUpdate(ctx, input.AppointmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
		}
		if appt.DriverID != input.DriverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to driver")
		}
		if appt.Status != enums.AppointmentStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only confirmed appointments can be cancelled")
		}

		if err := repo.UpdateAppointment(ctx, appt.ID, map[string]any{"status": enums.AppointmentStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel appointment")
		}

		if _, err := s.lifecycle.Reopen(ctx, tx, appt.CargoID, input.ActorUserID, "driver cancelled"); err != nil {
			return err
		}

		banUntil := time.Now().Add(s.banDuration)
		if err := s.driverStore.WithTx(tx).UpdateDriver(ctx, appt.DriverID, map[string]any{"cancel_ban_until": banUntil}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply cancellation ban")
		}

		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     input.ActorUserID,
			Action:     "appointment.cancel_by_driver",
			EntityType: "appointment",
			EntityID:   appt.ID,
			Meta:       map[string]any{"cargo_id": appt.CargoID.String(), "ban_until": banUntil},
		}); err != nil {
			return err
		}

		appt.Status = enums.AppointmentStatusCancelled
		out = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DriverUpdateStatus moves the carried cargo forward. The waybill gate is
// consulted before IN_TRANSIT.
func (s *service) DriverUpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Appointment, error) {
	if input.Target != enums.CargoStatusInTransit && input.Target != enums.CargoStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target status must be IN_TRANSIT or DELIVERED")
	}

	var out *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		appt, err := repo.FindAppointmentForUpdate(ctx, input.AppointmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
		}
		if appt.DriverID != input.DriverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to driver")
		}
		if appt.Status != enums.AppointmentStatusConfirmed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "appointment is not confirmed")
		}

		if input.Target == enums.CargoStatusInTransit {
			issued, err := repo.HasWaybill(ctx, appt.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check waybill")
			}
			if !issued {
				return pkgerrors.New(pkgerrors.CodeWaybillRequired, "waybill must be issued before transit")
			}
		}

		if _, err := s.lifecycle.Transition(ctx, tx, appt.CargoID, input.Target, input.ActorUserID, ""); err != nil {
			return err
		}

		out = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RankedRequests computes the advisory priority ordering of a cargo's
// pending requests for the owning freight company.
func (s *service) RankedRequests(ctx context.Context, cargoID, freightID uuid.UUID) ([]RankedRequest, error) {
	cargoRow, err := s.cargos.FindCargo(ctx, cargoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
	}
	if cargoRow.FreightID == nil || *cargoRow.FreightID != freightID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cargo does not belong to freight company")
	}

	pending, err := s.repo.ListPendingByCargo(ctx, cargoID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending requests")
	}

	lastServed := make(map[uuid.UUID]*time.Time, len(pending))
	for _, appt := range pending {
		if _, ok := lastServed[appt.DriverID]; ok {
			continue
		}
		last, err := s.repo.LastConfirmedDate(ctx, appt.DriverID, appt.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver service history")
		}
		lastServed[appt.DriverID] = last
	}

	return rankRequests(pending, lastServed, time.Now()), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	row, err := s.repo.FindAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
	}
	return row, nil
}

func (s *service) ListForDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*List, error) {
	return s.repo.ListByDriver(ctx, driverID, params)
}

func (s *service) ListForFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error) {
	return s.repo.ListByFreight(ctx, freightID, params)
}
