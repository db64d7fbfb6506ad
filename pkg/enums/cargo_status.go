package enums

import "fmt"

// CargoStatus tracks the lifecycle of a cargo from draft to delivery.
type CargoStatus string

const (
	CargoStatusDraft             CargoStatus = "DRAFT"
	CargoStatusSubmitted         CargoStatus = "SUBMITTED"
	CargoStatusAcceptedByFreight CargoStatus = "ACCEPTED_BY_FREIGHT"
	CargoStatusAnnouncedToHall   CargoStatus = "ANNOUNCED_TO_HALL"
	CargoStatusDriverAssigned    CargoStatus = "DRIVER_ASSIGNED"
	CargoStatusInTransit         CargoStatus = "IN_TRANSIT"
	CargoStatusDelivered         CargoStatus = "DELIVERED"
	CargoStatusCancelled         CargoStatus = "CANCELLED"
)

var validCargoStatuses = []CargoStatus{
	CargoStatusDraft,
	CargoStatusSubmitted,
	CargoStatusAcceptedByFreight,
	CargoStatusAnnouncedToHall,
	CargoStatusDriverAssigned,
	CargoStatusInTransit,
	CargoStatusDelivered,
	CargoStatusCancelled,
}

// String implements fmt.Stringer.
func (c CargoStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CargoStatus.
func (c CargoStatus) IsValid() bool {
	for _, candidate := range validCargoStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (c CargoStatus) IsTerminal() bool {
	return c == CargoStatusDelivered || c == CargoStatusCancelled
}

// ParseCargoStatus converts raw input into a CargoStatus.
func ParseCargoStatus(value string) (CargoStatus, error) {
	for _, candidate := range validCargoStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cargo status %q", value)
}
