package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voxindia/quickcart-backend/api/middleware"
	"github.com/voxindia/quickcart-backend/api/responses"
	"github.com/voxindia/quickcart-backend/api/validators"
	checkoutsvc "github.com/voxindia/quickcart-backend/internal/checkout"
	"github.com/voxindia/quickcart-backend/pkg/enums"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

type submitCheckoutRequest struct {
	Method  string               `json:"method" validate:"required"`
	Billing types.BillingDetails `json:"billing" validate:"required"`
}

// CheckoutSubmit starts a checkout attempt for the session cart.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload submitCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.Submit(r.Context(), sessionID, checkoutsvc.SubmitInput{
			Method:  method,
			Billing: payload.Billing,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type completeRazorpayRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// CheckoutRazorpayComplete verifies the popup-checkout callback and settles
// the attempt.
func CheckoutRazorpayComplete(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload completeRazorpayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conf, err := svc.CompleteRazorpay(r.Context(), sessionID,
			payload.RazorpayOrderID, payload.RazorpayPaymentID, payload.RazorpaySignature)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, conf)
	}
}

// CheckoutLinkStatus queries the payment-link gateway for an order's current
// status, the return-URL side of hosted-page reconciliation.
func CheckoutLinkStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderRef := chi.URLParam(r, "orderRef")
		if orderRef == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order ref is required"))
			return
		}

		status, err := svc.QueryLinkStatus(r.Context(), orderRef)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// CheckoutStatus reports the session's current attempt state.
func CheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		status, err := svc.Status(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// CheckoutReset abandons the session's attempt, keeping the cart.
func CheckoutReset(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		if err := svc.Reset(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"state": enums.CheckoutStateIdle.String()})
	}
}
