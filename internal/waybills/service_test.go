package waybills

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/appointments"
	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type stubWaybillRepo struct {
	byAppointment map[uuid.UUID]*models.Waybill
}

func newStubWaybillRepo() *stubWaybillRepo {
	return &stubWaybillRepo{byAppointment: make(map[uuid.UUID]*models.Waybill)}
}

func (s *stubWaybillRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubWaybillRepo) CreateWaybill(ctx context.Context, row *models.Waybill) (*models.Waybill, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	copied := *row
	s.byAppointment[row.AppointmentID] = &copied
	return row, nil
}

func (s *stubWaybillRepo) FindWaybill(ctx context.Context, id uuid.UUID) (*models.Waybill, error) {
	for _, row := range s.byAppointment {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubWaybillRepo) FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*models.Waybill, error) {
	row, ok := s.byAppointment[appointmentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubWaybillRepo) ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error) {
	panic("not implemented")
}

type stubApptStore struct {
	appointments.Repository
	appt *models.Appointment
}

func (s *stubApptStore) WithTx(tx *gorm.DB) appointments.Repository {
	return s
}

func (s *stubApptStore) FindAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	if s.appt == nil || s.appt.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.appt
	return &copied, nil
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

func confirmedAppointment(freightID uuid.UUID) *models.Appointment {
	return &models.Appointment{
		ID:        uuid.New(),
		CargoID:   uuid.New(),
		DriverID:  uuid.New(),
		FreightID: freightID,
		Status:    enums.AppointmentStatusConfirmed,
	}
}

func newTestService(t *testing.T, repo Repository, appts appointments.Repository) Service {
	t.Helper()
	svc, err := NewService(repo, appts, stubTxRunner{}, stubAuditor{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestIssueHappyPath(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	appt := confirmedAppointment(freightID)
	svc := newTestService(t, newStubWaybillRepo(), &stubApptStore{appt: appt})

	out, err := svc.Issue(context.Background(), IssueInput{
		AppointmentID: appt.ID,
		FreightID:     freightID,
		ActorUserID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.WaybillNumber, "WB-") {
		t.Errorf("unexpected waybill number: %s", out.WaybillNumber)
	}
	if out.CargoID != appt.CargoID || out.AppointmentID != appt.ID {
		t.Errorf("waybill not bound to appointment: %+v", out)
	}
	if out.IssuedAt.IsZero() {
		t.Error("issued_at should be set")
	}
}

func TestIssueRequiresConfirmedAppointment(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	appt := confirmedAppointment(freightID)
	appt.Status = enums.AppointmentStatusPending
	svc := newTestService(t, newStubWaybillRepo(), &stubApptStore{appt: appt})

	_, err := svc.Issue(context.Background(), IssueInput{AppointmentID: appt.ID, FreightID: freightID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestIssueRequiresOwnership(t *testing.T) {
	t.Parallel()

	appt := confirmedAppointment(uuid.New())
	svc := newTestService(t, newStubWaybillRepo(), &stubApptStore{appt: appt})

	_, err := svc.Issue(context.Background(), IssueInput{AppointmentID: appt.ID, FreightID: uuid.New()})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestIssueRejectsSecondWaybill(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	appt := confirmedAppointment(freightID)
	repo := newStubWaybillRepo()
	svc := newTestService(t, repo, &stubApptStore{appt: appt})

	input := IssueInput{AppointmentID: appt.ID, FreightID: freightID, ActorUserID: uuid.New()}
	if _, err := svc.Issue(context.Background(), input); err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	_, err := svc.Issue(context.Background(), input)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestIssueMissingAppointment(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubWaybillRepo(), &stubApptStore{})
	_, err := svc.Issue(context.Background(), IssueInput{AppointmentID: uuid.New(), FreightID: uuid.New()})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetByAppointmentNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubWaybillRepo(), &stubApptStore{})
	_, err := svc.GetByAppointment(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
