package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/kioskworks/counter-backend/api/responses"
	"github.com/kioskworks/counter-backend/api/validators"
	"github.com/kioskworks/counter-backend/internal/liveview"
	"github.com/kioskworks/counter-backend/internal/orders"
	pkgerrors "github.com/kioskworks/counter-backend/pkg/errors"
	"github.com/kioskworks/counter-backend/pkg/logger"
)

type supplyResponse struct {
	Supplied      bool `json:"supplied"`
	AutoCompleted bool `json:"auto_completed"`
}

// SupplyOrderedProduct marks one unit of the product handed over and
// auto-completes the order when it was the last outstanding unit.
func SupplyOrderedProduct(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		supplied, autoCompleted, err := store.SupplyAndCompleteIfDone(r.Context(), orderID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, supplyResponse{Supplied: supplied, AutoCompleted: autoCompleted})
	}
}

// SupplyOrder hands over every remaining unit and completes the order.
func SupplyOrder(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return orderAction(store, logg, func(store *orders.Store, r *http.Request, orderID int64) error {
		return store.SupplyAllAndComplete(r.Context(), orderID)
	})
}

// CompleteOrder resolves the order as completed regardless of per-unit
// supply state.
func CompleteOrder(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return orderAction(store, logg, func(store *orders.Store, r *http.Request, orderID int64) error {
		return store.Complete(r.Context(), orderID)
	})
}

// CancelOrder resolves the order as canceled.
func CancelOrder(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return orderAction(store, logg, func(store *orders.Store, r *http.Request, orderID int64) error {
		return store.Cancel(r.Context(), orderID)
	})
}

// ResetOrder undoes a resolution and puts the order back on the
// incoming board.
func ResetOrder(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return orderAction(store, logg, func(store *orders.Store, r *http.Request, orderID int64) error {
		return store.Reset(r.Context(), orderID)
	})
}

func orderAction(store *orders.Store, logg *logger.Logger, action func(*orders.Store, *http.Request, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := action(store, r, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"order_id": orderID})
	}
}

// ClearOrders drops every order and unit. Order ids are never reused.
func ClearOrders(store *orders.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ClearAll(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Warn(r.Context(), "order history cleared")
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

// OrdersIncoming returns the kitchen's incoming board.
func OrdersIncoming(facade *liveview.Facade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := facade.Incoming(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// OrdersResolved returns completed and canceled orders.
func OrdersResolved(facade *liveview.Facade, logg *logger.Logger) http.HandlerFunc {
	return resolvedListing(logg, facade.Resolved)
}

// OrdersCanceled returns canceled orders.
func OrdersCanceled(facade *liveview.Facade, logg *logger.Logger) http.HandlerFunc {
	return resolvedListing(logg, facade.Canceled)
}

// OrdersCompleted returns completed orders.
func OrdersCompleted(facade *liveview.Facade, logg *logger.Logger) http.HandlerFunc {
	return resolvedListing(logg, facade.Completed)
}

func resolvedListing(logg *logger.Logger, query func(ctx context.Context) ([]liveview.ResolvedOrderView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := query(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// OrderDetail returns one order with its units and totals.
func OrderDetail(facade *liveview.Facade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := facade.One(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// OrderedProducts returns the per-product board of outstanding units.
func OrderedProducts(facade *liveview.Facade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sortBy := strings.TrimSpace(r.URL.Query().Get("sort_by"))
		if sortBy == "" {
			sortBy = string(liveview.BoardSortProductID)
		}
		if !liveview.ValidBoardSort(sortBy) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "sort_by must be one of product_id, placed_at, count"))
			return
		}

		entries, err := facade.ProductBoard(r.Context(), liveview.BoardSort(sortBy))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
