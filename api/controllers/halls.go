package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/api/responses"
	"github.com/freightport/terminal-backend/api/validators"
	"github.com/freightport/terminal-backend/internal/halls"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/logger"
)

type terminalCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Province string `json:"province" validate:"required"`
	City     string `json:"city,omitempty"`
}

type hallCreateRequest struct {
	TerminalID uuid.UUID `json:"terminal_id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Province   string    `json:"province,omitempty"`
}

func TerminalCreate(svc halls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body terminalCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.CreateTerminal(r.Context(), halls.TerminalInput{
			Name:     body.Name,
			Province: body.Province,
			City:     body.City,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

func TerminalList(svc halls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListTerminals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"terminals": rows})
	}
}

func TerminalDetail(svc halls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		terminalID, err := validators.ParseUUIDParam(r, "terminalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.GetTerminal(r.Context(), terminalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func HallCreate(svc halls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body hallCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		row, err := svc.CreateHall(r.Context(), halls.HallInput{
			TerminalID: body.TerminalID,
			Name:       body.Name,
			Province:   body.Province,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, row)
	}
}

func HallList(svc halls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var terminalID uuid.UUID
		if raw := r.URL.Query().Get("terminal_id"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid terminal_id"))
				return
			}
			terminalID = parsed
		}

		rows, err := svc.ListHalls(r.Context(), terminalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"halls": rows})
	}
}

func HallDetail(svc halls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hallID, err := validators.ParseUUIDParam(r, "hallId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.GetHall(r.Context(), hallID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
