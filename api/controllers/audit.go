package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/api/responses"
	"github.com/freightport/terminal-backend/internal/audit"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/logger"
)

// AuditList exposes the audit trail to administrators.
func AuditList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := audit.Filters{
			Action:     r.URL.Query().Get("action"),
			EntityType: r.URL.Query().Get("entity_type"),
		}
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user_id"))
				return
			}
			filters.UserID = &id
		}
		if raw := r.URL.Query().Get("entity_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid entity_id"))
				return
			}
			filters.EntityID = &id
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
