package cargo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

type stubCargoRepo struct {
	cargos  map[uuid.UUID]*models.Cargo
	history []models.CargoStatusHistory
}

func newStubCargoRepo(rows ...*models.Cargo) *stubCargoRepo {
	repo := &stubCargoRepo{cargos: make(map[uuid.UUID]*models.Cargo)}
	for _, row := range rows {
		repo.cargos[row.ID] = row
	}
	return repo
}

func (s *stubCargoRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubCargoRepo) CreateCargo(ctx context.Context, cargo *models.Cargo) (*models.Cargo, error) {
	if cargo.ID == uuid.Nil {
		cargo.ID = uuid.New()
	}
	copied := *cargo
	s.cargos[cargo.ID] = &copied
	return cargo, nil
}

func (s *stubCargoRepo) CreateStatusHistory(ctx context.Context, row *models.CargoStatusHistory) error {
	s.history = append(s.history, *row)
	return nil
}

func (s *stubCargoRepo) FindCargo(ctx context.Context, id uuid.UUID) (*models.Cargo, error) {
	row, ok := s.cargos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubCargoRepo) FindCargoForUpdate(ctx context.Context, id uuid.UUID) (*models.Cargo, error) {
	return s.FindCargo(ctx, id)
}

func (s *stubCargoRepo) FindCargoByReference(ctx context.Context, referenceCode string) (*models.Cargo, error) {
	for _, row := range s.cargos {
		if row.ReferenceCode == referenceCode {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCargoRepo) UpdateCargo(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	row, ok := s.cargos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		row.Status = v.(enums.CargoStatus)
	}
	if v, ok := updates["fare"]; ok {
		fare := v.(decimal.Decimal)
		row.Fare = &fare
	}
	if v, ok := updates["freight_id"]; ok {
		id := v.(uuid.UUID)
		row.FreightID = &id
	}
	if v, ok := updates["rejection_note"]; ok {
		note := v.(string)
		row.RejectionNote = &note
	}
	return nil
}

func (s *stubCargoRepo) ListByProducer(ctx context.Context, producerID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	panic("not implemented")
}

func (s *stubCargoRepo) ListByFreight(ctx context.Context, freightID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	panic("not implemented")
}

func (s *stubCargoRepo) ListSubmitted(ctx context.Context, params pagination.Params) (*List, error) {
	panic("not implemented")
}

func (s *stubCargoRepo) ListHistory(ctx context.Context, cargoID uuid.UUID) ([]models.CargoStatusHistory, error) {
	var rows []models.CargoStatusHistory
	for _, row := range s.history {
		if row.CargoID == cargoID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubAuditor struct {
	entries []audit.Entry
}

func (s *stubAuditor) Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubProducerNotifier struct {
	calls int
}

func (s *stubProducerNotifier) CargoAccepted(ctx context.Context, producerID uuid.UUID, referenceCode string) {
	s.calls++
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, &stubAuditor{}, nil, nil, 50)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
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

func TestCreateFansOutPerTruck(t *testing.T) {
	t.Parallel()

	repo := newStubCargoRepo()
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateInput{
		ActorUserID:    uuid.New(),
		ProducerID:     uuid.New(),
		OriginProvince: "Tehran",
		OriginCity:     "Tehran",
		DestProvince:   "Fars",
		DestCity:       "Shiraz",
		CargoType:      "steel",
		Weight:         22,
		TruckCount:     3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 cargos, got %d", len(created))
	}

	seen := make(map[string]bool)
	for _, row := range created {
		if row.Status != enums.CargoStatusDraft {
			t.Errorf("expected DRAFT, got %s", row.Status)
		}
		if seen[row.ReferenceCode] {
			t.Errorf("duplicate reference code %s", row.ReferenceCode)
		}
		seen[row.ReferenceCode] = true
	}
	if len(repo.history) != 3 {
		t.Fatalf("expected one history row per cargo, got %d", len(repo.history))
	}
}

func TestCreateRejectsExcessiveTruckCount(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubCargoRepo())
	_, err := svc.Create(context.Background(), CreateInput{
		ProducerID: uuid.New(),
		Weight:     10,
		TruckCount: 51,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsNonPositiveWeight(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubCargoRepo())
	_, err := svc.Create(context.Background(), CreateInput{
		ProducerID: uuid.New(),
		Weight:     0,
		TruckCount: 1,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestTransitionRejectsIllegalEdge(t *testing.T) {
	t.Parallel()

	row := &models.Cargo{ID: uuid.New(), Status: enums.CargoStatusDraft}
	repo := newStubCargoRepo(row)
	svc := newTestService(t, repo)

	err := stubTxRunner{}.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, err := svc.Transition(context.Background(), tx, row.ID, enums.CargoStatusDelivered, uuid.New(), "")
		return err
	})
	assertCode(t, err, pkgerrors.CodeInvalidTransition)
}

func TestTransitionWritesHistory(t *testing.T) {
	t.Parallel()

	row := &models.Cargo{ID: uuid.New(), Status: enums.CargoStatusDraft}
	repo := newStubCargoRepo(row)
	svc := newTestService(t, repo)

	err := stubTxRunner{}.WithTx(context.Background(), func(tx *gorm.DB) error {
		out, err := svc.Transition(context.Background(), tx, row.ID, enums.CargoStatusSubmitted, uuid.New(), "ready")
		if err != nil {
			return err
		}
		if out.Status != enums.CargoStatusSubmitted {
			t.Errorf("expected SUBMITTED, got %s", out.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(repo.history))
	}
	entry := repo.history[0]
	if entry.FromStatus == nil || *entry.FromStatus != enums.CargoStatusDraft {
		t.Errorf("unexpected from status: %v", entry.FromStatus)
	}
	if entry.ToStatus != enums.CargoStatusSubmitted || entry.Note != "ready" {
		t.Errorf("unexpected history entry: %+v", entry)
	}
}

func TestSubmitRequiresOwnership(t *testing.T) {
	t.Parallel()

	producerID := uuid.New()
	row := &models.Cargo{ID: uuid.New(), ProducerID: producerID, Status: enums.CargoStatusDraft}
	svc := newTestService(t, newStubCargoRepo(row))

	_, err := svc.Submit(context.Background(), row.ID, uuid.New(), uuid.New())
	assertCode(t, err, pkgerrors.CodeForbidden)

	out, err := svc.Submit(context.Background(), row.ID, producerID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.CargoStatusSubmitted {
		t.Fatalf("expected SUBMITTED, got %s", out.Status)
	}
}

func TestAcceptAssignsFreightAndNotifies(t *testing.T) {
	t.Parallel()

	row := &models.Cargo{ID: uuid.New(), ProducerID: uuid.New(), Status: enums.CargoStatusSubmitted, ReferenceCode: "CG-TEST"}
	repo := newStubCargoRepo(row)
	notifier := &stubProducerNotifier{}
	svc, err := NewService(repo, stubTxRunner{}, &stubAuditor{}, notifier, nil, 50)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	freightID := uuid.New()
	out, err := svc.Accept(context.Background(), AcceptInput{CargoID: row.ID, ActorUserID: uuid.New(), FreightID: freightID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.CargoStatusAcceptedByFreight {
		t.Errorf("expected ACCEPTED_BY_FREIGHT, got %s", out.Status)
	}
	if out.FreightID == nil || *out.FreightID != freightID {
		t.Errorf("freight company not assigned: %v", out.FreightID)
	}
	if notifier.calls != 1 {
		t.Errorf("expected one producer notification, got %d", notifier.calls)
	}
}

func TestSetFareOnlyWhileAccepted(t *testing.T) {
	t.Parallel()

	freightID := uuid.New()
	fare := decimal.NewFromInt(1500)

	announced := &models.Cargo{ID: uuid.New(), FreightID: &freightID, Status: enums.CargoStatusAnnouncedToHall}
	svc := newTestService(t, newStubCargoRepo(announced))
	_, err := svc.SetFare(context.Background(), SetFareInput{CargoID: announced.ID, FreightID: freightID, Fare: fare})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	accepted := &models.Cargo{ID: uuid.New(), FreightID: &freightID, Status: enums.CargoStatusAcceptedByFreight}
	svc = newTestService(t, newStubCargoRepo(accepted))
	out, err := svc.SetFare(context.Background(), SetFareInput{CargoID: accepted.ID, FreightID: freightID, Fare: fare})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Fare == nil || !out.Fare.Equal(fare) {
		t.Fatalf("fare not stored: %v", out.Fare)
	}
}

func TestSetFareRejectsNonPositive(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubCargoRepo())
	_, err := svc.SetFare(context.Background(), SetFareInput{CargoID: uuid.New(), FreightID: uuid.New(), Fare: decimal.Zero})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestSetFareRequiresOwnership(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	row := &models.Cargo{ID: uuid.New(), FreightID: &owner, Status: enums.CargoStatusAcceptedByFreight}
	svc := newTestService(t, newStubCargoRepo(row))

	_, err := svc.SetFare(context.Background(), SetFareInput{CargoID: row.ID, FreightID: uuid.New(), Fare: decimal.NewFromInt(100)})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCancelAuthorization(t *testing.T) {
	t.Parallel()

	producerID := uuid.New()
	freightID := uuid.New()

	cases := []struct {
		name     string
		role     enums.UserRole
		profile  uuid.UUID
		wantCode pkgerrors.Code
	}{
		{"owning producer", enums.UserRoleProducer, producerID, ""},
		{"other producer", enums.UserRoleProducer, uuid.New(), pkgerrors.CodeForbidden},
		{"owning freight", enums.UserRoleFreightCompany, freightID, ""},
		{"other freight", enums.UserRoleFreightCompany, uuid.New(), pkgerrors.CodeForbidden},
		{"admin", enums.UserRoleAdmin, uuid.New(), ""},
		{"driver", enums.UserRoleDriver, uuid.New(), pkgerrors.CodeForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := &models.Cargo{ID: uuid.New(), ProducerID: producerID, FreightID: &freightID, Status: enums.CargoStatusSubmitted}
			svc := newTestService(t, newStubCargoRepo(row))

			out, err := svc.Cancel(context.Background(), CancelInput{
				CargoID:        row.ID,
				ActorUserID:    uuid.New(),
				ActorProfileID: tc.profile,
				ActorRole:      tc.role,
			})
			if tc.wantCode != "" {
				assertCode(t, err, tc.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Status != enums.CargoStatusCancelled {
				t.Fatalf("expected CANCELLED, got %s", out.Status)
			}
		})
	}
}

func TestCancelRejectsTerminalCargo(t *testing.T) {
	t.Parallel()

	row := &models.Cargo{ID: uuid.New(), ProducerID: uuid.New(), Status: enums.CargoStatusDelivered}
	svc := newTestService(t, newStubCargoRepo(row))

	_, err := svc.Cancel(context.Background(), CancelInput{
		CargoID:        row.ID,
		ActorProfileID: row.ProducerID,
		ActorRole:      enums.UserRoleProducer,
	})
	assertCode(t, err, pkgerrors.CodeInvalidTransition)
}

func TestRejectRequiresNoteAndSubmittedState(t *testing.T) {
	t.Parallel()

	row := &models.Cargo{ID: uuid.New(), Status: enums.CargoStatusSubmitted}
	svc := newTestService(t, newStubCargoRepo(row))

	_, err := svc.Reject(context.Background(), RejectInput{CargoID: row.ID, Note: "  "})
	assertCode(t, err, pkgerrors.CodeValidation)

	draft := &models.Cargo{ID: uuid.New(), Status: enums.CargoStatusDraft}
	svc = newTestService(t, newStubCargoRepo(draft))
	_, err = svc.Reject(context.Background(), RejectInput{CargoID: draft.ID, Note: "wrong origin"})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestRejectCancelsWithNote(t *testing.T) {
	t.Parallel()

	row := &models.Cargo{ID: uuid.New(), Status: enums.CargoStatusSubmitted}
	repo := newStubCargoRepo(row)
	svc := newTestService(t, repo)

	out, err := svc.Reject(context.Background(), RejectInput{CargoID: row.ID, ActorUserID: uuid.New(), Note: "overweight"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != enums.CargoStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", out.Status)
	}
	if out.RejectionNote == nil || *out.RejectionNote != "overweight" {
		t.Errorf("rejection note not stored: %v", out.RejectionNote)
	}
}

func TestReopenOnlyFromDriverAssigned(t *testing.T) {
	t.Parallel()

	assigned := &models.Cargo{ID: uuid.New(), Status: enums.CargoStatusDriverAssigned}
	repo := newStubCargoRepo(assigned)
	svc := newTestService(t, repo)

	err := stubTxRunner{}.WithTx(context.Background(), func(tx *gorm.DB) error {
		out, err := svc.Reopen(context.Background(), tx, assigned.ID, uuid.New(), "driver cancelled")
		if err != nil {
			return err
		}
		if out.Status != enums.CargoStatusAnnouncedToHall {
			t.Errorf("expected ANNOUNCED_TO_HALL, got %s", out.Status)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	announced := &models.Cargo{ID: uuid.New(), Status: enums.CargoStatusAnnouncedToHall}
	svc = newTestService(t, newStubCargoRepo(announced))
	err = stubTxRunner{}.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, err := svc.Reopen(context.Background(), tx, announced.ID, uuid.New(), "")
		return err
	})
	assertCode(t, err, pkgerrors.CodeInvalidTransition)
}
