package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/freightport/terminal-backend/api/middleware"
	"github.com/freightport/terminal-backend/api/validators"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

// actor is the authenticated identity middleware placed on the request.
type actor struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
	Role      enums.UserRole
}

func actorFromRequest(r *http.Request) (actor, error) {
	rawUser := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	out := actor{UserID: userID, Role: role}
	if raw := middleware.ProfileIDFromContext(r.Context()); raw != "" {
		profileID, err := uuid.Parse(raw)
		if err != nil {
			return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
		}
		out.ProfileID = profileID
	}
	return out, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
