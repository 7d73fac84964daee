package controllers

import (
	"net/http"

	"github.com/kioskworks/counter-backend/api/responses"
	"github.com/kioskworks/counter-backend/api/validators"
	authsvc "github.com/kioskworks/counter-backend/internal/auth"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/logger"
)

type loginRequest struct {
	Passcode string `json:"passcode" validate:"required,min=4"`
}

// AuthLogin exchanges the shared kitchen passcode for a staff token.
func AuthLogin(svc *authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Passcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
