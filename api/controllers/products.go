package controllers

import (
	"net/http"

	"github.com/kioskworks/counter-backend/api/responses"
	"github.com/kioskworks/counter-backend/api/validators"
	productsvc "github.com/kioskworks/counter-backend/internal/products"
	"github.com/kioskworks/counter-backend/pkg/logger"
)

// ProductList returns the full menu.
func ProductList(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

type createProductRequest struct {
	ProductID int64  `json:"product_id" validate:"required,min=1"`
	Name      string `json:"name" validate:"required"`
	Filename  string `json:"filename"`
	Price     int64  `json:"price" validate:"min=0"`
	NoStock   *int64 `json:"no_stock" validate:"omitempty,min=0"`
}

// ProductCreate adds a menu entry. Staff only.
func ProductCreate(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateInput{
			ProductID: payload.ProductID,
			Name:      payload.Name,
			Filename:  payload.Filename,
			Price:     payload.Price,
			NoStock:   payload.NoStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductDelete removes a menu entry and every ordered unit referencing
// it. Staff only; this rewrites order history.
func ProductDelete(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"product_id": productID})
	}
}
