package appointments

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/pkg/db/models"
)

func pendingAt(driverID uuid.UUID, createdAt time.Time) models.Appointment {
	return models.Appointment{ID: uuid.New(), DriverID: driverID, CreatedAt: createdAt}
}

func TestRankRequestsNeverServedFirst(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	veteran := uuid.New()
	rookie := uuid.New()
	lastWeek := now.AddDate(0, 0, -7)

	pending := []models.Appointment{
		pendingAt(veteran, now.Add(-2*time.Hour)),
		pendingAt(rookie, now.Add(-time.Hour)),
	}
	lastServed := map[uuid.UUID]*time.Time{
		veteran: &lastWeek,
		rookie:  nil,
	}

	ranked := rankRequests(pending, lastServed, now)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked requests, got %d", len(ranked))
	}
	if ranked[0].Appointment.DriverID != rookie || !ranked[0].NeverServed {
		t.Errorf("never-served driver should rank first: %+v", ranked[0])
	}
	if ranked[1].DaysSinceLast != 7 {
		t.Errorf("expected 7 idle days, got %d", ranked[1].DaysSinceLast)
	}
	if ranked[0].PriorityRank != 1 || ranked[1].PriorityRank != 2 {
		t.Errorf("ranks should be 1-based and sequential: %d, %d", ranked[0].PriorityRank, ranked[1].PriorityRank)
	}
}

func TestRankRequestsMoreIdleDaysFirst(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	recent := uuid.New()
	idle := uuid.New()
	yesterday := now.AddDate(0, 0, -1)
	lastMonth := now.AddDate(0, 0, -30)

	pending := []models.Appointment{
		pendingAt(recent, now.Add(-2*time.Hour)),
		pendingAt(idle, now.Add(-time.Hour)),
	}
	lastServed := map[uuid.UUID]*time.Time{
		recent: &yesterday,
		idle:   &lastMonth,
	}

	ranked := rankRequests(pending, lastServed, now)
	if ranked[0].Appointment.DriverID != idle {
		t.Errorf("longer-idle driver should rank first: %+v", ranked[0])
	}
}

func TestRankRequestsTieBreaksOnRequestTimeThenID(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	early := pendingAt(uuid.New(), now.Add(-3*time.Hour))
	late := pendingAt(uuid.New(), now.Add(-time.Hour))

	ranked := rankRequests([]models.Appointment{late, early}, map[uuid.UUID]*time.Time{}, now)
	if ranked[0].Appointment.ID != early.ID {
		t.Errorf("earlier request should win the tie")
	}

	// Same timestamp: the lower ID string wins, so repeated calls agree.
	same := now.Add(-time.Hour)
	a := pendingAt(uuid.New(), same)
	b := pendingAt(uuid.New(), same)
	first := rankRequests([]models.Appointment{a, b}, map[uuid.UUID]*time.Time{}, now)
	second := rankRequests([]models.Appointment{b, a}, map[uuid.UUID]*time.Time{}, now)
	if first[0].Appointment.ID != second[0].Appointment.ID {
		t.Error("ordering must be deterministic regardless of input order")
	}
}

func TestRankRequestsFutureServiceClampsToZero(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	driverID := uuid.New()
	future := now.Add(time.Hour)

	ranked := rankRequests(
		[]models.Appointment{pendingAt(driverID, now)},
		map[uuid.UUID]*time.Time{driverID: &future},
		now,
	)
	if ranked[0].DaysSinceLast != 0 {
		t.Errorf("future service date should clamp to 0 days, got %d", ranked[0].DaysSinceLast)
	}
	if ranked[0].NeverServed {
		t.Error("driver with service history must not be flagged never-served")
	}
}
