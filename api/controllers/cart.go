package controllers

import (
	"net/http"

	"github.com/voxindia/quickcart-backend/api/middleware"
	"github.com/voxindia/quickcart-backend/api/responses"
	"github.com/voxindia/quickcart-backend/api/validators"
	cartsvc "github.com/voxindia/quickcart-backend/internal/cart"
	"github.com/voxindia/quickcart-backend/pkg/enums"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

type cartResponse struct {
	Items []types.CartItem `json:"items"`
	Total int              `json:"total"`
}

func newCartResponse(items []types.CartItem) cartResponse {
	if items == nil {
		items = []types.CartItem{}
	}
	return cartResponse{Items: items, Total: types.CartTotal(items)}
}

// CartGet returns the session's cart snapshot.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session context missing"))
			return
		}

		items, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(items))
	}
}

type addItemRequest struct {
	ProductID   string  `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name"`
	Image       string  `json:"image"`
	ColorName   string  `json:"color_name"`
	Mode        string  `json:"mode" validate:"required"`
	Price       int     `json:"price" validate:"min=0"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	Area        float64 `json:"area" validate:"min=0"`
}

// CartAddItem appends or merges a line into the session cart.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseItemMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode"))
			return
		}

		items, err := svc.Add(r.Context(), sessionID, types.CartItem{
			ProductID:   payload.ProductID,
			ProductName: validators.SanitizeString(payload.ProductName, 200),
			Image:       validators.SanitizeString(payload.Image, 500),
			ColorName:   validators.SanitizeString(payload.ColorName, 100),
			Mode:        mode,
			Price:       payload.Price,
			Quantity:    payload.Quantity,
			Area:        payload.Area,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(items))
	}
}

type updateItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	ColorName string `json:"color_name"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var items []types.CartItem
		var err error
		if payload.Quantity == 0 {
			items, err = svc.Remove(r.Context(), sessionID, payload.ProductID, payload.ColorName)
		} else {
			items, err = svc.UpdateQuantity(r.Context(), sessionID, payload.ProductID, payload.ColorName, payload.Quantity)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(items))
	}
}

type removeItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	ColorName string `json:"color_name"`
}

// CartRemoveItem deletes a line from the session cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload removeItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.Remove(r.Context(), sessionID, payload.ProductID, payload.ColorName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(items))
	}
}

type replaceCartRequest struct {
	Items []addItemRequest `json:"items" validate:"dive"`
}

// CartReplace swaps the whole snapshot, used when a client syncs a locally
// persisted cart after reconnecting.
func CartReplace(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload replaceCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]types.CartItem, 0, len(payload.Items))
		for _, line := range payload.Items {
			mode, err := enums.ParseItemMode(line.Mode)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode"))
				return
			}
			items = append(items, types.CartItem{
				ProductID:   line.ProductID,
				ProductName: validators.SanitizeString(line.ProductName, 200),
				Image:       validators.SanitizeString(line.Image, 500),
				ColorName:   validators.SanitizeString(line.ColorName, 100),
				Mode:        mode,
				Price:       line.Price,
				Quantity:    line.Quantity,
				Area:        line.Area,
			})
		}

		result, err := svc.Replace(r.Context(), sessionID, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(result))
	}
}

// CartClear empties the session cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(nil))
	}
}
