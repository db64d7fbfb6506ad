package appointments

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/pkg/db/models"
)

// neverServedScore ranks drivers with no prior confirmed appointment above
// every driver who has been served at least once.
const neverServedScore = math.MaxInt32

// rankRequests orders pending requests by how long each driver has been idle:
// more days since the driver's last confirmed service ranks first. Ties break
// on earliest request time, then ID, so the output is deterministic for the
// same input regardless of call count.
func rankRequests(pending []models.Appointment, lastServed map[uuid.UUID]*time.Time, now time.Time) []RankedRequest {
	ranked := make([]RankedRequest, 0, len(pending))
	for _, appt := range pending {
		score := neverServedScore
		never := true
		if last, ok := lastServed[appt.DriverID]; ok && last != nil {
			never = false
			days := int(now.Sub(*last).Hours() / 24)
			if days < 0 {
				days = 0
			}
			score = days
		}
		ranked = append(ranked, RankedRequest{
			Appointment:   appt,
			DaysSinceLast: score,
			NeverServed:   never,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DaysSinceLast != ranked[j].DaysSinceLast {
			return ranked[i].DaysSinceLast > ranked[j].DaysSinceLast
		}
		ti := ranked[i].Appointment.CreatedAt
		tj := ranked[j].Appointment.CreatedAt
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return strings.Compare(ranked[i].Appointment.ID.String(), ranked[j].Appointment.ID.String()) < 0
	})

	for i := range ranked {
		ranked[i].PriorityRank = i + 1
	}
	return ranked
}
