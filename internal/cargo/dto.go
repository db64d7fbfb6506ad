package cargo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
)

// CreateInput carries a producer's cargo submission. TruckCount > 1 fans out
// into that many independent cargo rows sharing the same shipment data.
type CreateInput struct {
	ActorUserID    uuid.UUID
	ProducerID     uuid.UUID
	OriginProvince string
	OriginCity     string
	DestProvince   string
	DestCity       string
	CargoType      string
	Weight         float64
	Unit           string
	IsUrgent       bool
	Description    *string
	LoadingAt      *time.Time
	TruckCount     int
}

// AcceptInput identifies the freight company taking ownership of a submission.
type AcceptInput struct {
	CargoID     uuid.UUID
	ActorUserID uuid.UUID
	FreightID   uuid.UUID
}

// SetFareInput carries the freight company's fare for an accepted cargo.
type SetFareInput struct {
	CargoID     uuid.UUID
	ActorUserID uuid.UUID
	FreightID   uuid.UUID
	Fare        decimal.Decimal
}

// CancelInput identifies who is cancelling and why.
type CancelInput struct {
	CargoID        uuid.UUID
	ActorUserID    uuid.UUID
	ActorProfileID uuid.UUID
	ActorRole      enums.UserRole
	Note           string
}

// RejectInput carries a freight company's rejection of a submitted cargo.
type RejectInput struct {
	CargoID     uuid.UUID
	ActorUserID uuid.UUID
	Note        string
}

// Filters narrow cargo list queries.
type Filters struct {
	Status   *enums.CargoStatus
	IsUrgent *bool
}

// List wraps a page of cargo rows plus the next cursor.
type List struct {
	Cargos     []models.Cargo `json:"cargos"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
