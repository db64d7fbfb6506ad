package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freightport/terminal-backend/api/responses"
	"github.com/freightport/terminal-backend/api/validators"
	"github.com/freightport/terminal-backend/internal/cargo"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/logger"
)

type cargoCreateRequest struct {
	OriginProvince string     `json:"origin_province" validate:"required"`
	OriginCity     string     `json:"origin_city" validate:"required"`
	DestProvince   string     `json:"dest_province" validate:"required"`
	DestCity       string     `json:"dest_city" validate:"required"`
	CargoType      string     `json:"cargo_type" validate:"required"`
	Weight         float64    `json:"weight" validate:"required,gt=0"`
	Unit           string     `json:"unit,omitempty"`
	IsUrgent       bool       `json:"is_urgent,omitempty"`
	Description    *string    `json:"description,omitempty"`
	LoadingAt      *time.Time `json:"loading_at,omitempty"`
	TruckCount     int        `json:"truck_count,omitempty"`
}

type cargoFareRequest struct {
	Fare decimal.Decimal `json:"fare" validate:"required"`
}

type cargoNoteRequest struct {
	Note string `json:"note,omitempty"`
}

type cargoRejectRequest struct {
	Note string `json:"note" validate:"required"`
}

// CargoCreate accepts a producer's submission; truck_count > 1 fans out into
// that many cargo rows.
func CargoCreate(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body cargoCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), cargo.CreateInput{
			ActorUserID:    act.UserID,
			ProducerID:     act.ProfileID,
			OriginProvince: body.OriginProvince,
			OriginCity:     body.OriginCity,
			DestProvince:   body.DestProvince,
			DestCity:       body.DestCity,
			CargoType:      body.CargoType,
			Weight:         body.Weight,
			Unit:           body.Unit,
			IsUrgent:       body.IsUrgent,
			Description:    body.Description,
			LoadingAt:      body.LoadingAt,
			TruckCount:     body.TruckCount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"cargos": created})
	}
}

func CargoSubmit(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
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

		row, err := svc.Submit(r.Context(), cargoID, act.ProfileID, act.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func CargoAccept(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
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

		row, err := svc.Accept(r.Context(), cargo.AcceptInput{
			CargoID:     cargoID,
			ActorUserID: act.UserID,
			FreightID:   act.ProfileID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func CargoSetFare(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body cargoFareRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.SetFare(r.Context(), cargo.SetFareInput{
			CargoID:     cargoID,
			ActorUserID: act.UserID,
			FreightID:   act.ProfileID,
			Fare:        body.Fare,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func CargoCancel(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body cargoNoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Cancel(r.Context(), cargo.CancelInput{
			CargoID:        cargoID,
			ActorUserID:    act.UserID,
			ActorProfileID: act.ProfileID,
			ActorRole:      act.Role,
			Note:           body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func CargoReject(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body cargoRejectRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.Reject(r.Context(), cargo.RejectInput{
			CargoID:     cargoID,
			ActorUserID: act.UserID,
			Note:        body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func CargoDetail(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cargoID, err := validators.ParseUUIDParam(r, "cargoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Get(r.Context(), cargoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func CargoHistory(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cargoID, err := validators.ParseUUIDParam(r, "cargoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.History(r.Context(), cargoID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"history": rows})
	}
}

func CargoListMine(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
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
		filters, err := cargoFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForProducer(r.Context(), act.ProfileID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CargoListAccepted(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
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
		filters, err := cargoFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForFreight(r.Context(), act.ProfileID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CargoListSubmitted exposes the open pool of unclaimed submissions.
func CargoListSubmitted(svc cargo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListSubmitted(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func cargoFilters(r *http.Request) (cargo.Filters, error) {
	filters := cargo.Filters{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseCargoStatus(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &status
	}
	urgent, err := validators.ParseQueryBool(r, "is_urgent")
	if err != nil {
		return filters, err
	}
	filters.IsUrgent = urgent
	return filters, nil
}
