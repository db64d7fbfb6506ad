package controllers

import (
	"net/http"

	"github.com/freightport/terminal-backend/api/responses"
	"github.com/freightport/terminal-backend/api/validators"
	"github.com/freightport/terminal-backend/internal/auth"
	"github.com/freightport/terminal-backend/internal/users"
	"github.com/freightport/terminal-backend/pkg/enums"
	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
	"github.com/freightport/terminal-backend/pkg/logger"
)

type registerRequest struct {
	Phone         string  `json:"phone" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Password      string  `json:"password" validate:"required,min=8"`
	Role          string  `json:"role" validate:"required,oneof=PRODUCER FREIGHT_COMPANY DRIVER"`
	CompanyName   *string `json:"company_name,omitempty"`
	Address       *string `json:"address,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
}

// AuthRegister creates the account and immediately logs the new user in.
func AuthRegister(registerSvc users.Service, authSvc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if registerSvc == nil || authSvc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "registration unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseUserRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid role"))
			return
		}

		if _, err := registerSvc.Register(r.Context(), users.RegisterInput{
			Phone:         body.Phone,
			Name:          body.Name,
			Password:      body.Password,
			Role:          role,
			CompanyName:   body.CompanyName,
			Address:       body.Address,
			LicenseNumber: body.LicenseNumber,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := authSvc.Login(r.Context(), auth.LoginRequest{Phone: body.Phone, Password: body.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
