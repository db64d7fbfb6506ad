package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/pkg/config"
	"github.com/freightport/terminal-backend/pkg/db"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterInput creates a user together with its role profile.
type RegisterInput struct {
	Phone         string
	Name          string
	Password      string
	Role          enums.UserRole
	CompanyName   *string
	Address       *string
	LicenseNumber *string
	ActorUserID   uuid.UUID
}

// Profile is the role-resolved view of an authenticated account.
type Profile struct {
	User      *models.User `json:"user"`
	ProfileID uuid.UUID    `json:"profile_id"`
}

// Service exposes account registration and profile resolution.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	ResolveProfile(ctx context.Context, user *models.User) (*Profile, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	auditor audit.Recorder
	pwCfg   config.PasswordConfig
}

// NewService builds the users service.
func NewService(repo Repository, tx txRunner, auditor audit.Recorder, pwCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, tx: tx, auditor: auditor, pwCfg: pwCfg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" || strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone and name required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var out *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		user := models.User{
			Phone:        phone,
			Name:         input.Name,
			PasswordHash: hash,
			Role:         input.Role,
			IsActive:     true,
		}
		if _, err := repo.CreateUser(ctx, &user); err != nil {
			if db.IsUniqueViolation(err, "idx_users_phone") {
				return pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		switch input.Role {
		case enums.UserRoleProducer:
			profile := models.ProducerProfile{UserID: user.ID, CompanyName: input.CompanyName, Address: input.Address}
			if _, err := repo.CreateProducerProfile(ctx, &profile); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create producer profile")
			}
		case enums.UserRoleFreightCompany:
			profile := models.FreightCompanyProfile{UserID: user.ID, CompanyName: input.CompanyName, LicenseNumber: input.LicenseNumber}
			if _, err := repo.CreateFreightProfile(ctx, &profile); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create freight profile")
			}
		case enums.UserRoleDriver:
			profile := models.DriverProfile{UserID: user.ID, LicenseNumber: input.LicenseNumber}
			if _, err := repo.CreateDriverProfile(ctx, &profile); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create driver profile")
			}
		}

		actor := input.ActorUserID
		if actor == uuid.Nil {
			actor = user.ID
		}
		if err := s.auditor.Record(ctx, tx, audit.Entry{
			UserID:     actor,
			Action:     "user.register",
			EntityType: "user",
			EntityID:   user.ID,
			Meta:       map[string]any{"role": string(input.Role)},
		}); err != nil {
			return err
		}

		out = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// ResolveProfile maps a user to its role profile ID, used for token claims
// and ownership checks.
func (s *service) ResolveProfile(ctx context.Context, user *models.User) (*Profile, error) {
	var profileID uuid.UUID
	switch user.Role {
	case enums.UserRoleProducer:
		p, err := s.repo.FindProducerByUser(ctx, user.ID)
		if err != nil {
			return nil, profileLookupError(err)
		}
		profileID = p.ID
	case enums.UserRoleFreightCompany:
		p, err := s.repo.FindFreightByUser(ctx, user.ID)
		if err != nil {
			return nil, profileLookupError(err)
		}
		profileID = p.ID
	case enums.UserRoleDriver:
		p, err := s.repo.FindDriverByUser(ctx, user.ID)
		if err != nil {
			return nil, profileLookupError(err)
		}
		profileID = p.ID
	case enums.UserRoleAdmin:
		// Admins have no role profile; the user ID stands in.
		profileID = user.ID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "unknown user role")
	}
	return &Profile{User: user, ProfileID: profileID}, nil
}

func profileLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
}
