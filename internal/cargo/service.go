package cargo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type producerNotifier interface {
	CargoAccepted(ctx context.Context, producerID uuid.UUID, referenceCode string)
}

type transitionObserver interface {
	ObserveCargoTransition(toStatus string)
}

// Lifecycle is the single sanctioned way any component changes cargo status.
// Callers supply their own transaction so dependent writes commit atomically
// with the transition.
type Lifecycle interface {
	Transition(ctx context.Context, tx *gorm.DB, cargoID uuid.UUID, target enums.CargoStatus, actorUserID uuid.UUID, note string) (*models.Cargo, error)
	Reopen(ctx context.Context, tx *gorm.DB, cargoID uuid.UUID, actorUserID uuid.UUID, note string) (*models.Cargo, error)
}

// Service owns the cargo lifecycle and producer/freight cargo operations.
type Service interface {
	Lifecycle
	Create(ctx context.Context, input CreateInput) ([]models.Cargo, error)
	Submit(ctx context.Context, cargoID, producerID, actorUserID uuid.UUID) (*models.Cargo, error)
	Accept(ctx context.Context, input AcceptInput) (*models.Cargo, error)
	SetFare(ctx context.Context, input SetFareInput) (*models.Cargo, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Cargo, error)
	Reject(ctx context.Context, input RejectInput) (*models.Cargo, error)
	Get(ctx context.Context, cargoID uuid.UUID) (*models.Cargo, error)
	History(ctx context.Context, cargoID uuid.UUID) ([]models.CargoStatusHistory, error)
	ListForProducer(ctx context.Context, producerID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	ListForFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	ListSubmitted(ctx context.Context, params pagination.Params) (*List, error)
}

type service struct {
	repo          Repository
	tx            txRunner
	auditor       audit.Recorder
	notifier      producerNotifier
	observer      transitionObserver
	maxTruckCount int
}

// NewService builds the cargo lifecycle service. The notifier and observer
// are optional; nil disables them.
func NewService(repo Repository, tx txRunner, auditor audit.Recorder, notifier producerNotifier, observer transitionObserver, maxTruckCount int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cargo repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if maxTruckCount <= 0 {
		maxTruckCount = 1
	}
	return &service{
		repo:          repo,
		tx:            tx,
		auditor:       auditor,
		notifier:      notifier,
		observer:      observer,
		maxTruckCount: maxTruckCount,
	}, nil
}

// Transition applies one lifecycle edge inside the caller's transaction. The
// cargo row is locked first so concurrent transitions on the same cargo
// serialize; the loser then fails the edge check against the committed state.
func (s *service) Transition(ctx context.Context, tx *gorm.DB, cargoID uuid.UUID, target enums.CargoStatus, actorUserID uuid.UUID, note string) (*models.Cargo, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for cargo transition")
	}
	repo := s.repo.WithTx(tx)

	cargo, err := repo.FindCargoForUpdate(ctx, cargoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
	}

	if !CanTransition(cargo.Status, target) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("cannot move cargo from %s to %s", cargo.Status, target))
	}

	from := cargo.Status
	if err := repo.UpdateCargo(ctx, cargo.ID, map[string]any{"status": target}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cargo status")
	}

	history := models.CargoStatusHistory{
		CargoID:    cargo.ID,
		FromStatus: &from,
		ToStatus:   target,
		ChangedBy:  actorUserID,
		Note:       note,
	}
	if err := repo.CreateStatusHistory(ctx, &history); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write status history")
	}

	if err := s.auditor.Record(ctx, tx, audit.Entry{
		UserID:     actorUserID,
		Action:     "cargo.transition",
		EntityType: "cargo",
		EntityID:   cargo.ID,
		Meta:       map[string]any{"from": string(from), "to": string(target), "note": note},
	}); err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.ObserveCargoTransition(string(target))
	}

	cargo.Status = target
	return cargo, nil
}

// Reopen returns an assigned cargo to the hall after its confirmed driver
// cancels. This is the single path back from DRIVER_ASSIGNED to
// ANNOUNCED_TO_HALL and deliberately bypasses the forward-only edge table.
func (s *service) Reopen(ctx context.Context, tx *gorm.DB, cargoID uuid.UUID, actorUserID uuid.UUID, note string) (*models.Cargo, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for cargo reopen")
	}
	repo := s.repo.WithTx(tx)

	cargo, err := repo.FindCargoForUpdate(ctx, cargoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
	}
	if cargo.Status != enums.CargoStatusDriverAssigned {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition,
			fmt.Sprintf("cannot reopen cargo in status %s", cargo.Status))
	}

	from := cargo.Status
	target := enums.CargoStatusAnnouncedToHall
	if err := repo.UpdateCargo(ctx, cargo.ID, map[string]any{"status": target}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cargo status")
	}

	history := models.CargoStatusHistory{
		CargoID:    cargo.ID,
		FromStatus: &from,
		ToStatus:   target,
		ChangedBy:  actorUserID,
		Note:       note,
	}
	if err := repo.CreateStatusHistory(ctx, &history); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write status history")
	}

	if err := s.auditor.Record(ctx, tx, audit.Entry{
		UserID:     actorUserID,
		Action:     "cargo.reopen",
		EntityType: "cargo",
		EntityID:   cargo.ID,
		Meta:       map[string]any{"from": string(from), "to": string(target), "note": note},
	}); err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.ObserveCargoTransition(string(target))
	}

	cargo.Status = target
	return cargo, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) ([]models.Cargo, error) {
	if input.ProducerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "producer context missing")
	}
	if input.TruckCount <= 0 {
		input.TruckCount = 1
	}
	if input.TruckCount > s.maxTruckCount {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("truck count exceeds maximum of %d", s.maxTruckCount))
	}
	if input.Weight <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}
	unit := input.Unit
	if unit == "" {
		unit = "ton"
	}

	var created []models.Cargo
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i := 0; i < input.TruckCount; i++ {
			code, err := newReferenceCode()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reference code")
			}
			row := models.Cargo{
				ReferenceCode:  code,
				ProducerID:     input.ProducerID,
				OriginProvince: input.OriginProvince,
				OriginCity:     input.OriginCity,
				DestProvince:   input.DestProvince,
				DestCity:       input.DestCity,
				CargoType:      input.CargoType,
				Weight:         input.Weight,
				Unit:           unit,
				IsUrgent:       input.IsUrgent,
				Description:    input.Description,
				LoadingAt:      input.LoadingAt,
				Status:         enums.CargoStatusDraft,
			}
			if _, err := repo.CreateCargo(ctx, &row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cargo")
			}
			history := models.CargoStatusHistory{
				CargoID:   row.ID,
				ToStatus:  enums.CargoStatusDraft,
				ChangedBy: input.ActorUserID,
			}
			if err := repo.CreateStatusHistory(ctx, &history); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write status history")
			}
			if err := s.auditor.Record(ctx, tx, audit.Entry{
				UserID:     input.ActorUserID,
				Action:     "cargo.create",
				EntityType: "cargo",
				EntityID:   row.ID,
				Meta:       map[string]any{"reference_code": row.ReferenceCode},
			}); err != nil {
				return err
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Submit(ctx context.Context, cargoID, producerID, actorUserID uuid.UUID) (*models.Cargo, error) {
	var out *models.Cargo
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cargo, err := repo.FindCargo(ctx, cargoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
		}
		if cargo.ProducerID != producerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cargo does not belong to producer")
		}
		out, err = s.Transition(ctx, tx, cargoID, enums.CargoStatusSubmitted, actorUserID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Accept(ctx context.Context, input AcceptInput) (*models.Cargo, error) {
	if input.FreightID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "freight context missing")
	}

	var out *models.Cargo
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cargo, err := s.Transition(ctx, tx, input.CargoID, enums.CargoStatusAcceptedByFreight, input.ActorUserID, "")
		if err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateCargo(ctx, cargo.ID, map[string]any{"freight_id": input.FreightID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign freight company")
		}
		freightID := input.FreightID
		cargo.FreightID = &freightID
		out = cargo
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notification is best-effort and must not undo the committed acceptance.
	if s.notifier != nil {
		s.notifier.CargoAccepted(ctx, out.ProducerID, out.ReferenceCode)
	}
	return out, nil
}

func (s *service) SetFare(ctx context.Context, input SetFareInput) (*models.Cargo, error) {
	if input.Fare.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fare must be positive")
	}

	var out *models.Cargo
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cargo, err := repo.FindCargoForUpdate(ctx, input.CargoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
		}
		if cargo.FreightID == nil || *cargo.FreightID != input.FreightID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cargo does not belong to freight company")
		}
		if cargo.Status != enums.CargoStatusAcceptedByFreight {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "fare can only be set before announcement")
		}
		if err := repo.UpdateCargo(ctx, cargo.ID, map[string]any{"fare": input.Fare}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fare")
		}
		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     input.ActorUserID,
			Action:     "cargo.set_fare",
			EntityType: "cargo",
			EntityID:   cargo.ID,
			Meta:       map[string]any{"fare": input.Fare.String()},
		}); err != nil {
			return err
		}
		fare := input.Fare
		cargo.Fare = &fare
		out = cargo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Cargo, error) {
	var out *models.Cargo
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cargo, err := repo.FindCargo(ctx, input.CargoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
		}
		if err := authorizeCancel(cargo, input); err != nil {
			return err
		}
		out, err = s.Transition(ctx, tx, input.CargoID, enums.CargoStatusCancelled, input.ActorUserID, input.Note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func authorizeCancel(cargo *models.Cargo, input CancelInput) error {
	switch input.ActorRole {
	case enums.UserRoleAdmin:
		return nil
	case enums.UserRoleProducer:
		if cargo.ProducerID == input.ActorProfileID {
			return nil
		}
	case enums.UserRoleFreightCompany:
		if cargo.FreightID != nil && *cargo.FreightID == input.ActorProfileID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "actor may not cancel this cargo")
}

// Reject declines a submitted cargo: the rejection note is stored and the
// cargo is cancelled in the same transaction.
func (s *service) Reject(ctx context.Context, input RejectInput) (*models.Cargo, error) {
	if strings.TrimSpace(input.Note) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection note required")
	}

	var out *models.Cargo
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cargo, err := repo.FindCargoForUpdate(ctx, input.CargoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
		}
		if cargo.Status != enums.CargoStatusSubmitted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only submitted cargo can be rejected")
		}
		if err := repo.UpdateCargo(ctx, cargo.ID, map[string]any{"rejection_note": input.Note}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store rejection note")
		}
		out, err = s.Transition(ctx, tx, input.CargoID, enums.CargoStatusCancelled, input.ActorUserID, input.Note)
		if err != nil {
			return err
		}
		note := input.Note
		out.RejectionNote = &note
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, cargoID uuid.UUID) (*models.Cargo, error) {
	cargo, err := s.repo.FindCargo(ctx, cargoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cargo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cargo")
	}
	return cargo, nil
}

func (s *service) History(ctx context.Context, cargoID uuid.UUID) ([]models.CargoStatusHistory, error) {
	rows, err := s.repo.ListHistory(ctx, cargoID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list status history")
	}
	return rows, nil
}

func (s *service) ListForProducer(ctx context.Context, producerID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	return s.repo.ListByProducer(ctx, producerID, params, filters)
}

func (s *service) ListForFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	return s.repo.ListByFreight(ctx, freightID, params, filters)
}

func (s *service) ListSubmitted(ctx context.Context, params pagination.Params) (*List, error) {
	return s.repo.ListSubmitted(ctx, params)
}

func newReferenceCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "CG-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
