package drivers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/pkg/db/models"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// VehicleInput registers a truck to a driver profile.
type VehicleInput struct {
	DriverID    uuid.UUID
	Plate       string
	VehicleType string
	CapacityTon *float64
}

// Service exposes the driver directory plus administrative ban management.
type Service interface {
	Get(ctx context.Context, driverID uuid.UUID) (*models.DriverProfile, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.DriverProfile, error)
	List(ctx context.Context, params pagination.Params) (*List, error)
	LiftBan(ctx context.Context, driverID, actorUserID uuid.UUID) (*models.DriverProfile, error)
	AddVehicle(ctx context.Context, input VehicleInput) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, driverID uuid.UUID) ([]models.Vehicle, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor audit.Recorder
}

// NewService builds the driver directory service.
func NewService(repo Repository, tx txRunner, auditor audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("drivers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, tx: tx, auditor: auditor}, nil
}

func (s *service) Get(ctx context.Context, driverID uuid.UUID) (*models.DriverProfile, error) {
	row, err := s.repo.FindDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	return row, nil
}

func (s *service) GetByUser(ctx context.Context, userID uuid.UUID) (*models.DriverProfile, error) {
	row, err := s.repo.FindDriverByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	return row, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*List, error) {
	return s.repo.ListDrivers(ctx, params)
}

// LiftBan clears a driver's cancellation penalty ahead of its expiry.
func (s *service) LiftBan(ctx context.Context, driverID, actorUserID uuid.UUID) (*models.DriverProfile, error) {
	var out *models.DriverProfile
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindDriver(ctx, driverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		}
		if err := repo.UpdateDriver(ctx, row.ID, map[string]any{"cancel_ban_until": nil}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear ban")
		}
		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     actorUserID,
			Action:     "driver.lift_ban",
			EntityType: "driver_profile",
			EntityID:   row.ID,
		}); err != nil {
			return err
		}
		row.CancelBanUntil = nil
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) AddVehicle(ctx context.Context, input VehicleInput) (*models.Vehicle, error) {
	if input.Plate == "" || input.VehicleType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate and vehicle type required")
	}
	row := models.Vehicle{
		DriverID:    input.DriverID,
		Plate:       input.Plate,
		VehicleType: input.VehicleType,
		CapacityTon: input.CapacityTon,
	}
	if _, err := s.repo.AddVehicle(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add vehicle")
	}
	return &row, nil
}

func (s *service) ListVehicles(ctx context.Context, driverID uuid.UUID) ([]models.Vehicle, error) {
	rows, err := s.repo.ListVehicles(ctx, driverID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return rows, nil
}
