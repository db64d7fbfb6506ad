package cargo

import "github.com/freightport/terminal-backend/pkg/enums"

// allowedTransitions is the authoritative edge set of the cargo lifecycle.
// DELIVERED and CANCELLED are terminal and have no outgoing edges.
var allowedTransitions = map[enums.CargoStatus][]enums.CargoStatus{
	enums.CargoStatusDraft:             {enums.CargoStatusSubmitted, enums.CargoStatusCancelled},
	enums.CargoStatusSubmitted:         {enums.CargoStatusAcceptedByFreight, enums.CargoStatusCancelled},
	enums.CargoStatusAcceptedByFreight: {enums.CargoStatusAnnouncedToHall, enums.CargoStatusCancelled},
	enums.CargoStatusAnnouncedToHall:   {enums.CargoStatusDriverAssigned, enums.CargoStatusCancelled},
	enums.CargoStatusDriverAssigned:    {enums.CargoStatusInTransit, enums.CargoStatusCancelled},
	enums.CargoStatusInTransit:         {enums.CargoStatusDelivered},
}

// CanTransition reports whether the edge from -> to exists in the lifecycle.
func CanTransition(from, to enums.CargoStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the legal next statuses for the given status.
func AllowedTargets(from enums.CargoStatus) []enums.CargoStatus {
	targets := allowedTransitions[from]
	out := make([]enums.CargoStatus, len(targets))
	copy(out, targets)
	return out
}
