package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/pkg/config"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/security"
)

type stubUsersRepo struct {
	users     map[uuid.UUID]*models.User
	producers map[uuid.UUID]*models.ProducerProfile
	freights  map[uuid.UUID]*models.FreightCompanyProfile
	drivers   map[uuid.UUID]*models.DriverProfile
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		users:     make(map[uuid.UUID]*models.User),
		producers: make(map[uuid.UUID]*models.ProducerProfile),
		freights:  make(map[uuid.UUID]*models.FreightCompanyProfile),
		drivers:   make(map[uuid.UUID]*models.DriverProfile),
	}
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubUsersRepo) CreateUser(ctx context.Context, row *models.User) (*models.User, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	s.users[row.ID] = row
	return row, nil
}

func (s *stubUsersRepo) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubUsersRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	for _, row := range s.users {
		if row.Phone == phone {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsersRepo) CreateProducerProfile(ctx context.Context, row *models.ProducerProfile) (*models.ProducerProfile, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	s.producers[row.UserID] = row
	return row, nil
}

func (s *stubUsersRepo) CreateFreightProfile(ctx context.Context, row *models.FreightCompanyProfile) (*models.FreightCompanyProfile, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	s.freights[row.UserID] = row
	return row, nil
}

func (s *stubUsersRepo) CreateDriverProfile(ctx context.Context, row *models.DriverProfile) (*models.DriverProfile, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	s.drivers[row.UserID] = row
	return row, nil
}

func (s *stubUsersRepo) FindProducerByUser(ctx context.Context, userID uuid.UUID) (*models.ProducerProfile, error) {
	row, ok := s.producers[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubUsersRepo) FindFreightByUser(ctx context.Context, userID uuid.UUID) (*models.FreightCompanyProfile, error) {
	row, ok := s.freights[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubUsersRepo) FindDriverByUser(ctx context.Context, userID uuid.UUID) (*models.DriverProfile, error) {
	row, ok := s.drivers[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubAuditor struct{}

func (stubAuditor) Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	return nil
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, stubAuditor{}, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterCreatesRoleProfile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		role enums.UserRole
	}{
		{"producer", enums.UserRoleProducer},
		{"freight company", enums.UserRoleFreightCompany},
		{"driver", enums.UserRoleDriver},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubUsersRepo()
			svc := newTestService(t, repo)

			user, err := svc.Register(context.Background(), RegisterInput{
				Phone:    "0912000" + string(tc.role[0]) + "000",
				Name:     "Account Holder",
				Password: "long-enough-password",
				Role:     tc.role,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !user.IsActive {
				t.Error("new accounts should be active")
			}
			if ok, _ := security.VerifyPassword("long-enough-password", user.PasswordHash); !ok {
				t.Error("stored hash should verify the password")
			}

			switch tc.role {
			case enums.UserRoleProducer:
				if _, ok := repo.producers[user.ID]; !ok {
					t.Error("producer profile not created")
				}
			case enums.UserRoleFreightCompany:
				if _, ok := repo.freights[user.ID]; !ok {
					t.Error("freight profile not created")
				}
			case enums.UserRoleDriver:
				if _, ok := repo.drivers[user.ID]; !ok {
					t.Error("driver profile not created")
				}
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUsersRepo())

	_, err := svc.Register(context.Background(), RegisterInput{Phone: "", Name: "X", Password: "long-enough", Role: enums.UserRoleDriver})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Register(context.Background(), RegisterInput{Phone: "0912", Name: "X", Password: "short", Role: enums.UserRoleDriver})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Register(context.Background(), RegisterInput{Phone: "0912", Name: "X", Password: "long-enough", Role: enums.UserRole("SUPERVISOR")})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestResolveProfilePerRole(t *testing.T) {
	t.Parallel()

	repo := newStubUsersRepo()
	svc := newTestService(t, repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Phone:    "09121111111",
		Name:     "Driver",
		Password: "long-enough-password",
		Role:     enums.UserRoleDriver,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	profile, err := svc.ResolveProfile(context.Background(), user)
	if err != nil {
		t.Fatalf("resolve profile: %v", err)
	}
	if profile.ProfileID != repo.drivers[user.ID].ID {
		t.Error("profile id should point at the driver profile")
	}
}

func TestResolveProfileAdminUsesUserID(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUsersRepo())
	admin := &models.User{ID: uuid.New(), Role: enums.UserRoleAdmin}

	profile, err := svc.ResolveProfile(context.Background(), admin)
	if err != nil {
		t.Fatalf("resolve profile: %v", err)
	}
	if profile.ProfileID != admin.ID {
		t.Error("admin profile id should fall back to the user id")
	}
}

func TestResolveProfileMissingProfile(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubUsersRepo())
	user := &models.User{ID: uuid.New(), Role: enums.UserRoleProducer}

	_, err := svc.ResolveProfile(context.Background(), user)
	assertCode(t, err, pkgerrors.CodeNotFound)
}
