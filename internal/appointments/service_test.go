package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/internal/cargo"
	"github.com/freightport/terminal-backend/internal/drivers"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type stubApptRepo struct {
	rows             map[uuid.UUID]*models.Appointment
	activeLoad       bool
	openRequest      bool
	hasWaybill       bool
	cancelledSibling *uuid.UUID
	lastConfirmed    map[uuid.UUID]*time.Time
}

func newStubApptRepo(rows ...*models.Appointment) *stubApptRepo {
	repo := &stubApptRepo{rows: make(map[uuid.UUID]*models.Appointment)}
	for _, row := range rows {
		repo.rows[row.ID] = row
	}
	return repo
}

func (s *stubApptRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubApptRepo) CreateAppointment(ctx context.Context, row *models.Appointment) (*models.Appointment, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	copied := *row
	s.rows[row.ID] = &copied
	return row, nil
}

func (s *stubApptRepo) FindAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubApptRepo) FindAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	return s.FindAppointment(ctx, id)
}

func (s *stubApptRepo) HasOpenRequest(ctx context.Context, cargoID, driverID uuid.UUID) (bool, error) {
	return s.openRequest, nil
}

func (s *stubApptRepo) HasActiveLoad(ctx context.Context, driverID uuid.UUID) (bool, error) {
	return s.activeLoad, nil
}

func (s *stubApptRepo) HasWaybill(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	return s.hasWaybill, nil
}

func (s *stubApptRepo) CancelOtherPending(ctx context.Context, cargoID, keepID uuid.UUID) error {
	s.cancelledSibling = &cargoID
	for _, row := range s.rows {
		if row.CargoID == cargoID && row.ID != keepID && row.Status == enums.AppointmentStatusPending {
			row.Status = enums.AppointmentStatusCancelled
		}
	}
	return nil
}

func (s *stubApptRepo) UpdateAppointment(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	row, ok := s.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		row.Status = v.(enums.AppointmentStatus)
	}
	if v, ok := updates["appointment_date"]; ok {
		date := v.(time.Time)
		row.AppointmentDate = &date
	}
	if v, ok := updates["sms_sent"]; ok {
		row.SMSSent = v.(bool)
	}
	return nil
}

func (s *stubApptRepo) ListPendingByCargo(ctx context.Context, cargoID uuid.UUID) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, row := range s.rows {
		if row.CargoID == cargoID && row.Status == enums.AppointmentStatusPending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubApptRepo) LastConfirmedDate(ctx context.Context, driverID, excludeAppointmentID uuid.UUID) (*time.Time, error) {
	return s.lastConfirmed[driverID], nil
}

func (s *stubApptRepo) ListByDriver(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*List, error) {
	panic("not implemented")
}

func (s *stubApptRepo) ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params) (*List, error) {
	panic("not implemented")
}

type stubCargoStore struct {
	cargo.Repository
	row *models.Cargo
}

func (s *stubCargoStore) WithTx(tx *gorm.DB) cargo.Repository {
	return s
}

func (s *stubCargoStore) FindCargo(ctx context.Context, id uuid.UUID) (*models.Cargo, error) {
	if s.row == nil || s.row.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.row
	return &copied, nil
}

type stubLifecycle struct {
	cargoRow    *models.Cargo
	transitions []enums.CargoStatus
	reopened    int
	err         error
}

func (s *stubLifecycle) Transition(ctx context.Context, tx *gorm.DB, cargoID uuid.UUID, target enums.CargoStatus, actorUserID uuid.UUID, note string) (*models.Cargo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.transitions = append(s.transitions, target)
	if s.cargoRow != nil {
		copied := *s.cargoRow
		copied.Status = target
		return &copied, nil
	}
	return &models.Cargo{ID: cargoID, Status: target}, nil
}

func (s *stubLifecycle) Reopen(ctx context.Context, tx *gorm.DB, cargoID uuid.UUID, actorUserID uuid.UUID, note string) (*models.Cargo, error) {
	s.reopened++
	return &models.Cargo{ID: cargoID, Status: enums.CargoStatusAnnouncedToHall}, nil
}

type stubDriverStore struct {
	drivers.Repository
	driver  *models.DriverProfile
	updates map[string]any
}

func (s *stubDriverStore) WithTx(tx *gorm.DB) drivers.Repository {
	return s
}

func (s *stubDriverStore) FindDriver(ctx context.Context, id uuid.UUID) (*models.DriverProfile, error) {
	if s.driver == nil || s.driver.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.driver
	return &copied, nil
}

func (s *stubDriverStore) UpdateDriver(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubAuditor struct{}

func (stubAuditor) Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	return nil
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) AppointmentConfirmed(ctx context.Context, driverID uuid.UUID, referenceCode string) error {
	s.calls++
	return s.err
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

type fixture struct {
	svc       Service
	repo      *stubApptRepo
	cargos    *stubCargoStore
	lifecycle *stubLifecycle
	drivers   *stubDriverStore
	notifier  *stubNotifier
}

func newFixture(t *testing.T, repo *stubApptRepo, cargos *stubCargoStore, lifecycle *stubLifecycle, driverStore *stubDriverStore) *fixture {
	t.Helper()
	notifier := &stubNotifier{}
	svc, err := NewService(repo, cargos, lifecycle, driverStore, stubTxRunner{}, stubAuditor{}, notifier, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, repo: repo, cargos: cargos, lifecycle: lifecycle, drivers: driverStore, notifier: notifier}
}

func announcedCargo(freightID uuid.UUID) *models.Cargo {
	return &models.Cargo{
		ID:        uuid.New(),
		FreightID: &freightID,
		Status:    enums.CargoStatusAnnouncedToHall,
	}
}

func TestRequestCargoBanCheckedFirst(t *testing.T) {
	t.Parallel()

	banUntil := time.Now().Add(12 * time.Hour)
	driver := &models.DriverProfile{ID: uuid.New(), CancelBanUntil: &banUntil}
	cargoRow := announcedCargo(uuid.New())

	// Even with every later check also failing, the ban wins.
	repo := newStubApptRepo()
	repo.activeLoad = true
	repo.openRequest = true
	f := newFixture(t, repo, &stubCargoStore{row: cargoRow}, &stubLifecycle{}, &stubDriverStore{driver: driver})

	_, err := f.svc.RequestCargo(context.Background(), RequestInput{CargoID: cargoRow.ID, DriverID: driver.ID})
	assertCode(t, err, pkgerrors.CodeDriverBanned)
}

func TestRequestCargoExpiredBanIsIgnored(t *testing.T) {
	t.Parallel()

	banUntil := time.Now().Add(-time.Hour)
	driver := &models.DriverProfile{ID: uuid.New(), CancelBanUntil: &banUntil}
	cargoRow := announcedCargo(uuid.New())
	f := newFixture(t, newStubApptRepo(), &stubCargoStore{row: cargoRow}, &stubLifecycle{}, &stubDriverStore{driver: driver})

	out, err := f.svc.RequestCargo(context.Background(), RequestInput{CargoID: cargoRow.ID, DriverID: driver.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.AppointmentStatusPending {
		t.Fatalf("expected PENDING, got %s", out.Status)
	}
}

func TestRequestCargoBusyCheckedBeforeState(t *testing.T) {
	t.Parallel()

	driver := &models.DriverProfile{ID: uuid.New()}
	cargoRow := announcedCargo(uuid.New())
	cargoRow.Status = enums.CargoStatusAcceptedByFreight

	repo := newStubApptRepo()
	repo.activeLoad = true
	f := newFixture(t, repo, &stubCargoStore{row: cargoRow}, &stubLifecycle{}, &stubDriverStore{driver: driver})

	_, err := f.svc.RequestCargo(context.Background(), RequestInput{CargoID: cargoRow.ID, DriverID: driver.ID})
	assertCode(t, err, pkgerrors.CodeDriverBusy)
}

func TestRequestCargoRequiresAnnouncedState(t *testing.T) {
	t.Parallel()

	driver := &models.DriverProfile{ID: uuid.New()}
	cargoRow := announcedCargo(uuid.New())
	cargoRow.Status = enums.CargoStatusDriverAssigned
	f := newFixture(t, newStubApptRepo(), &stubCargoStore{row: cargoRow}, &stubLifecycle{}, &stubDriverStore{driver: driver})

	_, err := f.svc.RequestCargo(context.Background(), RequestInput{CargoID: cargoRow.ID, DriverID: driver.ID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRequestCargoRejectsDuplicate(t *testing.T) {
	t.Parallel()

	driver := &models.DriverProfile{ID: uuid.New()}
	cargoRow := announcedCargo(uuid.New())
	repo := newStubApptRepo()
	repo.openRequest = true
	f := newFixture(t, repo, &stubCargoStore{row: cargoRow}, &stubLifecycle{}, &stubDriverStore{driver: driver})

	_, err := f.svc.RequestCargo(context.Background(), RequestInput{CargoID: cargoRow.ID, DriverID: driver.ID})
	assertCode(t, err, pkgerrors.CodeDuplicateRequest)
}

func TestRequestCargoCreatesPending(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	driver := &models.DriverProfile{ID: uuid.New()}
	cargoRow := announcedCargo(freightID)
	repo := newStubApptRepo()
	f := newFixture(t, repo, &stubCargoStore{row: cargoRow}, &stubLifecycle{}, &stubDriverStore{driver: driver})

	out, err := f.svc.RequestCargo(context.Background(), RequestInput{CargoID: cargoRow.ID, DriverID: driver.ID, ActorUserID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.AppointmentStatusPending {
		t.Errorf("expected PENDING, got %s", out.Status)
	}
	if out.FreightID != freightID {
		t.Errorf("freight owner not copied from cargo")
	}
}

func TestApproveConfirmsAndCancelsSiblings(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	loadingAt := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	cargoRow := announcedCargo(freightID)
	cargoRow.LoadingAt = &loadingAt
	cargoRow.ReferenceCode = "CG-ABCD"

	winner := &models.Appointment{ID: uuid.New(), CargoID: cargoRow.ID, DriverID: uuid.New(), FreightID: freightID, Status: enums.AppointmentStatusPending}
	loser := &models.Appointment{ID: uuid.New(), CargoID: cargoRow.ID, DriverID: uuid.New(), FreightID: freightID, Status: enums.AppointmentStatusPending}
	repo := newStubApptRepo(winner, loser)
	lifecycle := &stubLifecycle{cargoRow: cargoRow}
	f := newFixture(t, repo, &stubCargoStore{row: cargoRow}, lifecycle, &stubDriverStore{})

	out, err := f.svc.Approve(context.Background(), ApproveInput{AppointmentID: winner.ID, FreightID: freightID, ActorUserID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.AppointmentStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", out.Status)
	}
	if out.AppointmentDate == nil || !out.AppointmentDate.Equal(loadingAt) {
		t.Errorf("appointment date should come from loading time, got %v", out.AppointmentDate)
	}
	if len(lifecycle.transitions) != 1 || lifecycle.transitions[0] != enums.CargoStatusDriverAssigned {
		t.Errorf("expected transition to DRIVER_ASSIGNED, got %v", lifecycle.transitions)
	}
	if repo.rows[loser.ID].Status != enums.AppointmentStatusCancelled {
		t.Errorf("competing request should be cancelled, got %s", repo.rows[loser.ID].Status)
	}
	if f.notifier.calls != 1 {
		t.Errorf("expected one driver notification, got %d", f.notifier.calls)
	}
	if !out.SMSSent {
		t.Error("sms_sent should be recorded after successful delivery")
	}
}

func TestApproveNotifierFailureDoesNotFailApproval(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	cargoRow := announcedCargo(freightID)
	appt := &models.Appointment{ID: uuid.New(), CargoID: cargoRow.ID, DriverID: uuid.New(), FreightID: freightID, Status: enums.AppointmentStatusPending}
	repo := newStubApptRepo(appt)
	f := newFixture(t, repo, &stubCargoStore{row: cargoRow}, &stubLifecycle{cargoRow: cargoRow}, &stubDriverStore{})
	f.notifier.err = context.DeadlineExceeded

	out, err := f.svc.Approve(context.Background(), ApproveInput{AppointmentID: appt.ID, FreightID: freightID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.AppointmentStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", out.Status)
	}
	if out.SMSSent {
		t.Error("sms_sent must stay false when delivery fails")
	}
}

func TestApproveRequiresPendingStatus(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	appt := &models.Appointment{ID: uuid.New(), FreightID: freightID, Status: enums.AppointmentStatusCancelled}
	f := newFixture(t, newStubApptRepo(appt), &stubCargoStore{}, &stubLifecycle{}, &stubDriverStore{})

	_, err := f.svc.Approve(context.Background(), ApproveInput{AppointmentID: appt.ID, FreightID: freightID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestApproveRequiresOwnership(t *testing.T) {
	t.Parallel()

	appt := &models.Appointment{ID: uuid.New(), FreightID: uuid.New(), Status: enums.AppointmentStatusPending}
	f := newFixture(t, newStubApptRepo(appt), &stubCargoStore{}, &stubLifecycle{}, &stubDriverStore{})

	_, err := f.svc.Approve(context.Background(), ApproveInput{AppointmentID: appt.ID, FreightID: uuid.New()})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRejectLeavesCargoAnnounced(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	appt := &models.Appointment{ID: uuid.New(), FreightID: freightID, Status: enums.AppointmentStatusPending}
	lifecycle := &stubLifecycle{}
	f := newFixture(t, newStubApptRepo(appt), &stubCargoStore{}, lifecycle, &stubDriverStore{})

	out, err := f.svc.Reject(context.Background(), RejectInput{AppointmentID: appt.ID, FreightID: freightID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.AppointmentStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", out.Status)
	}
	if len(lifecycle.transitions) != 0 || lifecycle.reopened != 0 {
		t.Error("rejecting a pending request must not touch the cargo")
	}
}

func TestCancelByDriverReopensAndBans(t *testing.T) {
	t.Parallel()

	driverID := uuid.New()
	appt := &models.Appointment{ID: uuid.New(), CargoID: uuid.New(), DriverID: driverID, Status: enums.AppointmentStatusConfirmed}
	lifecycle := &stubLifecycle{}
	driverStore := &stubDriverStore{}
	f := newFixture(t, newStubApptRepo(appt), &stubCargoStore{}, lifecycle, driverStore)

	before := time.Now()
	out, err := f.svc.CancelByDriver(context.Background(), CancelByDriverInput{AppointmentID: appt.ID, DriverID: driverID, ActorUserID: uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.AppointmentStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", out.Status)
	}
	if lifecycle.reopened != 1 {
		t.Errorf("cargo should be reopened exactly once, got %d", lifecycle.reopened)
	}

	banUntil, ok := driverStore.updates["cancel_ban_until"].(time.Time)
	if !ok {
		t.Fatalf("ban not applied: %v", driverStore.updates)
	}
	if banUntil.Before(before.Add(23*time.Hour)) || banUntil.After(before.Add(25*time.Hour)) {
		t.Errorf("ban should last about 24h, got until %v", banUntil)
	}
}

func TestCancelByDriverRequiresConfirmedStatus(t *testing.T) {
	t.Parallel()

	driverID := uuid.New()
	appt := &models.Appointment{ID: uuid.New(), DriverID: driverID, Status: enums.AppointmentStatusPending}
	f := newFixture(t, newStubApptRepo(appt), &stubCargoStore{}, &stubLifecycle{}, &stubDriverStore{})

	_, err := f.svc.CancelByDriver(context.Background(), CancelByDriverInput{AppointmentID: appt.ID, DriverID: driverID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelByDriverRequiresOwnership(t *testing.T) {
	t.Parallel()

	appt := &models.Appointment{ID: uuid.New(), DriverID: uuid.New(), Status: enums.AppointmentStatusConfirmed}
	f := newFixture(t, newStubApptRepo(appt), &stubCargoStore{}, &stubLifecycle{}, &stubDriverStore{})

	_, err := f.svc.CancelByDriver(context.Background(), CancelByDriverInput{AppointmentID: appt.ID, DriverID: uuid.New()})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestDriverUpdateStatusRequiresWaybillForTransit(t *testing.T) {
	t.Parallel()

	driverID := uuid.New()
	appt := &models.Appointment{ID: uuid.New(), CargoID: uuid.New(), DriverID: driverID, Status: enums.AppointmentStatusConfirmed}
	repo := newStubApptRepo(appt)
	lifecycle := &stubLifecycle{}
	f := newFixture(t, repo, &stubCargoStore{}, lifecycle, &stubDriverStore{})

	_, err := f.svc.DriverUpdateStatus(context.Background(), UpdateStatusInput{
		AppointmentID: appt.ID,
		DriverID:      driverID,
		Target:        enums.CargoStatusInTransit,
	})
	assertCode(t, err, pkgerrors.CodeWaybillRequired)
	if len(lifecycle.transitions) != 0 {
		t.Errorf("blocked transit must not transition cargo, got %v", lifecycle.transitions)
	}

	repo.hasWaybill = true
	_, err = f.svc.DriverUpdateStatus(context.Background(), UpdateStatusInput{
		AppointmentID: appt.ID,
		DriverID:      driverID,
		Target:        enums.CargoStatusInTransit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lifecycle.transitions) != 1 || lifecycle.transitions[0] != enums.CargoStatusInTransit {
		t.Errorf("expected transition to IN_TRANSIT, got %v", lifecycle.transitions)
	}
}

func TestDriverUpdateStatusRejectsOtherTargets(t *testing.T) {
	t.Parallel()

	f := newFixture(t, newStubApptRepo(), &stubCargoStore{}, &stubLifecycle{}, &stubDriverStore{})
	_, err := f.svc.DriverUpdateStatus(context.Background(), UpdateStatusInput{
		AppointmentID: uuid.New(),
		DriverID:      uuid.New(),
		Target:        enums.CargoStatusCancelled,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRankedRequestsRequiresOwnership(t *testing.T) {
	t.Parallel()

	cargoRow := announcedCargo(uuid.New())
	f := newFixture(t, newStubApptRepo(), &stubCargoStore{row: cargoRow}, &stubLifecycle{}, &stubDriverStore{})

	_, err := f.svc.RankedRequests(context.Background(), cargoRow.ID, uuid.New())
	assertCode(t, err, pkgerrors.CodeForbidden)
}
