package appointments

import (
	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
)

// RequestInput is a driver's claim on an announced cargo.
type RequestInput struct {
	CargoID     uuid.UUID
	DriverID    uuid.UUID
	ActorUserID uuid.UUID
}

// ApproveInput is the freight company's selection of one pending request.
type ApproveInput struct {
	AppointmentID uuid.UUID
	FreightID     uuid.UUID
	ActorUserID   uuid.UUID
	Note          *string
}

// RejectInput declines a pending request without touching the cargo.
type RejectInput struct {
	AppointmentID uuid.UUID
	FreightID     uuid.UUID
	ActorUserID   uuid.UUID
}

// CancelByDriverInput withdraws a confirmed appointment and triggers the
// cancellation penalty.
type CancelByDriverInput struct {
	AppointmentID uuid.UUID
	DriverID      uuid.UUID
	ActorUserID   uuid.UUID
}

// UpdateStatusInput moves the carried cargo to IN_TRANSIT or DELIVERED.
type UpdateStatusInput struct {
	AppointmentID uuid.UUID
	DriverID      uuid.UUID
	ActorUserID   uuid.UUID
	Target        enums.CargoStatus
}

// RankedRequest is one pending request with its advisory priority.
type RankedRequest struct {
	Appointment   models.Appointment `json:"appointment"`
	PriorityRank  int                `json:"priority_rank"`
	DaysSinceLast int                `json:"days_since_last"`
	NeverServed   bool               `json:"never_served"`
}

// List wraps a page of appointments plus the next cursor.
type List struct {
	Appointments []models.Appointment `json:"appointments"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}
