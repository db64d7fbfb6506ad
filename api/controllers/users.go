package controllers

import (
	"net/http"

	"github.com/freightport/terminal-backend/api/responses"
	"github.com/freightport/terminal-backend/internal/users"
	"github.com/freightport/terminal-backend/pkg/logger"
)

// UserMe returns the authenticated account with its role profile resolved.
func UserMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), act.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.ResolveProfile(r.Context(), user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
