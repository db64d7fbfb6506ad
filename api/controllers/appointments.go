package controllers

import (
	"net/http"

	"github.com/freightport/terminal-backend/api/responses"
	"github.com/freightport/terminal-backend/api/validators"
	"github.com/freightport/terminal-backend/internal/appointments"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/logger"
)

type approveRequest struct {
	Note *string `json:"note,omitempty"`
}

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=IN_TRANSIT DELIVERED"`
}

// CargoRequest is a driver's claim on an announced cargo.
func CargoRequest(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
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

		row, err := svc.RequestCargo(r.Context(), appointments.RequestInput{
			CargoID:     cargoID,
			DriverID:    act.ProfileID,
			ActorUserID: act.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

// CargoRankedRequests returns the advisory priority ordering of a cargo's
// pending requests.
func CargoRankedRequests(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
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

		ranked, err := svc.RankedRequests(r.Context(), cargoID, act.ProfileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"requests": ranked})
	}
}

func AppointmentApprove(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appointmentID, err := validators.ParseUUIDParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body approveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Approve(r.Context(), appointments.ApproveInput{
			AppointmentID: appointmentID,
			FreightID:     act.ProfileID,
			ActorUserID:   act.UserID,
			Note:          body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AppointmentReject(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appointmentID, err := validators.ParseUUIDParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Reject(r.Context(), appointments.RejectInput{
			AppointmentID: appointmentID,
			FreightID:     act.ProfileID,
			ActorUserID:   act.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// AppointmentCancel is the driver's withdrawal of a confirmed load; it
// reopens the cargo and applies the cancellation ban.
func AppointmentCancel(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appointmentID, err := validators.ParseUUIDParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.CancelByDriver(r.Context(), appointments.CancelByDriverInput{
			AppointmentID: appointmentID,
			DriverID:      act.ProfileID,
			ActorUserID:   act.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// AppointmentUpdateStatus moves the carried cargo to IN_TRANSIT or DELIVERED.
func AppointmentUpdateStatus(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appointmentID, err := validators.ParseUUIDParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseCargoStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status"))
			return
		}

		row, err := svc.DriverUpdateStatus(r.Context(), appointments.UpdateStatusInput{
			AppointmentID: appointmentID,
			DriverID:      act.ProfileID,
			ActorUserID:   act.UserID,
			Target:        target,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AppointmentDetail(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, err := validators.ParseUUIDParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Get(r.Context(), appointmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func AppointmentListMine(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListForDriver(r.Context(), act.ProfileID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AppointmentListForFreight(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
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
