package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kioskworks/counter-backend/api/middleware"
	"github.com/kioskworks/counter-backend/api/responses"
	"github.com/kioskworks/counter-backend/api/validators"
	cartsvc "github.com/kioskworks/counter-backend/internal/cart"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/logger"
)

// CartCreate allocates a fresh cart session and sets the session cookie.
func CartCreate(svc *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		view := svc.Create(r.Context())
		setSessionCookie(w, view.SessionKey)
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// CartFetch returns the current cart. A missing or stale session cookie
// yields a fresh empty cart so the kiosk never dead-ends.
func CartFetch(svc *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		key, _ := resolveSession(w, r, svc)
		view, err := svc.Get(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
}

// CartAddItem appends one unit of a product to the cart.
func CartAddItem(svc *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key, _ := resolveSession(w, r, svc)
		view, err := svc.Add(r.Context(), key, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartRemoveItem drops one line from the cart.
func CartRemoveItem(svc *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		key, _ := resolveSession(w, r, svc)
		view, err := svc.Remove(r.Context(), key, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartClear empties the cart but keeps the session alive.
func CartClear(svc *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		key, _ := resolveSession(w, r, svc)
		view, err := svc.Clear(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type submitResponse struct {
	OrderID int64 `json:"order_id"`
}

// CartSubmit turns the cart into a placed order. The session is consumed
// on success; the cookie is cleared so the next tap starts a new cart.
func CartSubmit(svc *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		cookie, err := r.Cookie(middleware.SessionCookieName)
		if err != nil || cookie.Value == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "session not found"))
			return
		}

		orderID, err := svc.Submit(r.Context(), cookie.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w)
		if logg != nil {
			logg.Info(logg.WithOrderID(r.Context(), orderID), "order placed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, submitResponse{OrderID: orderID})
	}
}

// resolveSession returns a usable session key, creating a fresh cart
// (and re-setting the cookie) when the presented one is missing or
// no longer known. The second return reports whether a new session was
// created.
func resolveSession(w http.ResponseWriter, r *http.Request, svc *cartsvc.Manager) (string, bool) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := svc.Get(r.Context(), cookie.Value); err == nil {
			return cookie.Value, false
		}
	}
	view := svc.Create(r.Context())
	setSessionCookie(w, view.SessionKey)
	return view.SessionKey, true
}

func setSessionCookie(w http.ResponseWriter, key string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
