package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/api/responses"
	"github.com/freightport/terminal-backend/api/validators"
	"github.com/freightport/terminal-backend/internal/announcements"
	"github.com/freightport/terminal-backend/pkg/logger"
)

type announceRequest struct {
	HallID    uuid.UUID  `json:"hall_id" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type suspendRequest struct {
	Note string `json:"note,omitempty"`
}

// CargoAnnounce posts an accepted, fare-priced cargo into a hall.
func CargoAnnounce(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cargoID, err := validators.ParseUUIDParam(r, "cargoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body announceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Announce(r.Context(), announcements.AnnounceInput{
			CargoID:     cargoID,
			HallID:      body.HallID,
			FreightID:   act.ProfileID,
			ActorUserID: act.UserID,
			ExpiresAt:   body.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// AnnouncementSuspend hides the posting from drivers without touching cargo
// status.
func AnnouncementSuspend(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		announcementID, err := validators.ParseUUIDParam(r, "announcementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body suspendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Suspend(r.Context(), announcements.SuspendInput{
			AnnouncementID: announcementID,
			FreightID:      act.ProfileID,
			ActorUserID:    act.UserID,
			Note:           body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AnnouncementResume(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		announcementID, err := validators.ParseUUIDParam(r, "announcementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Resume(r.Context(), announcements.ResumeInput{
			AnnouncementID: announcementID,
			FreightID:      act.ProfileID,
			ActorUserID:    act.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AnnouncementDetail(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		announcementID, err := validators.ParseUUIDParam(r, "announcementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Get(r.Context(), announcementID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// HallBoard is the driver-facing view: announced, unsuspended, unexpired
// cargo in one hall.
func HallBoard(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hallID, err := validators.ParseUUIDParam(r, "hallId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.VisibleInHall(r.Context(), hallID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AnnouncementListMine(svc announcements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForFreight(r.Context(), act.ProfileID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
