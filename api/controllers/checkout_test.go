package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	checkoutsvc "github.com/voxindia/quickcart-backend/internal/checkout"
	"github.com/voxindia/quickcart-backend/pkg/enums"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
)

type stubCheckoutService struct {
	submitResult *checkoutsvc.SubmitResult
	submitErr    error
	submitInput  checkoutsvc.SubmitInput
	confirmation *checkoutsvc.Confirmation
	completeErr  error
	linkStatus   *checkoutsvc.LinkStatus
	linkErr      error
	linkRef      string
	status       *checkoutsvc.AttemptStatus
	resetCalled  bool
}

func (s *stubCheckoutService) Submit(_ context.Context, _ string, input checkoutsvc.SubmitInput) (*checkoutsvc.SubmitResult, error) {
	s.submitInput = input
	return s.submitResult, s.submitErr
}

func (s *stubCheckoutService) CompleteRazorpay(context.Context, string, string, string, string) (*checkoutsvc.Confirmation, error) {
	return s.confirmation, s.completeErr
}

func (s *stubCheckoutService) HandleLinkPaid(context.Context, string) error { return nil }

func (s *stubCheckoutService) QueryLinkStatus(_ context.Context, orderRef string) (*checkoutsvc.LinkStatus, error) {
	s.linkRef = orderRef
	return s.linkStatus, s.linkErr
}

func (s *stubCheckoutService) Status(context.Context, string) (*checkoutsvc.AttemptStatus, error) {
	return s.status, nil
}

func (s *stubCheckoutService) Reset(context.Context, string) error {
	s.resetCalled = true
	return nil
}

const validSubmitBody = `{
  "method": "razorpay",
  "billing": {
    "full_name": "Asha Rao",
    "email": "asha@example.com",
    "phone": "9999999999",
    "address_line1": "12 MG Road",
    "address_line2": "Flat 4B",
    "city": "Bengaluru",
    "state": "Karnataka",
    "zip": "560001"
  }
}`

func TestCheckoutSubmit(t *testing.T) {
	svc := &stubCheckoutService{submitResult: &checkoutsvc.SubmitResult{
		OrderRef:        "qc_abc",
		Method:          enums.PaymentMethodRazorpay,
		State:           enums.CheckoutStateAwaitingProvider,
		RazorpayOrderID: "order_1",
	}}

	w := doRequest(t, CheckoutSubmit(svc, nil), http.MethodPost, "/checkout", validSubmitBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.submitInput.Method != enums.PaymentMethodRazorpay {
		t.Fatalf("unexpected method %q", svc.submitInput.Method)
	}
	if svc.submitInput.Billing.FullName != "Asha Rao" {
		t.Fatalf("billing not passed through: %+v", svc.submitInput.Billing)
	}
}

func TestCheckoutSubmitRejectsUnknownMethod(t *testing.T) {
	svc := &stubCheckoutService{}

	body := `{"method":"paypal","billing":{"full_name":"A","email":"a@b.c","phone":"1","address_line1":"x","address_line2":"y","city":"c","state":"s","zip":"z"}}`
	w := doRequest(t, CheckoutSubmit(svc, nil), http.MethodPost, "/checkout", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCheckoutSubmitMapsStateConflict(t *testing.T) {
	svc := &stubCheckoutService{submitErr: pkgerrors.New(pkgerrors.CodeStateConflict, "a checkout attempt is already in progress")}

	w := doRequest(t, CheckoutSubmit(svc, nil), http.MethodPost, "/checkout", validSubmitBody)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestCheckoutRazorpayComplete(t *testing.T) {
	svc := &stubCheckoutService{confirmation: &checkoutsvc.Confirmation{
		OrderRef:    "qc_abc",
		Method:      enums.PaymentMethodRazorpay,
		TotalAmount: 3000,
	}}

	body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`
	w := doRequest(t, CheckoutRazorpayComplete(svc, nil), http.MethodPost, "/checkout/razorpay/complete", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Data checkoutsvc.Confirmation `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.TotalAmount != 3000 {
		t.Fatalf("unexpected confirmation %+v", envelope.Data)
	}
}

func TestCheckoutRazorpayCompleteRequiresAllFields(t *testing.T) {
	svc := &stubCheckoutService{}

	body := `{"razorpay_order_id":"order_1"}`
	w := doRequest(t, CheckoutRazorpayComplete(svc, nil), http.MethodPost, "/checkout/razorpay/complete", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCheckoutRazorpayCompleteMapsVerificationError(t *testing.T) {
	svc := &stubCheckoutService{completeErr: pkgerrors.New(pkgerrors.CodeVerification, "payment signature mismatch")}

	body := `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"forged"}`
	w := doRequest(t, CheckoutRazorpayComplete(svc, nil), http.MethodPost, "/checkout/razorpay/complete", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCheckoutStatus(t *testing.T) {
	svc := &stubCheckoutService{status: &checkoutsvc.AttemptStatus{
		State:  enums.CheckoutStateFailed,
		Reason: enums.FailureReasonProviderError,
	}}

	w := doRequest(t, CheckoutStatus(svc, nil), http.MethodGet, "/checkout/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var envelope struct {
		Data checkoutsvc.AttemptStatus `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.State != enums.CheckoutStateFailed {
		t.Fatalf("unexpected status %+v", envelope.Data)
	}
}

func TestCheckoutLinkStatus(t *testing.T) {
	svc := &stubCheckoutService{linkStatus: &checkoutsvc.LinkStatus{
		OrderRef:   "qc_abc",
		LinkStatus: enums.LinkOrderStatusPaid,
		State:      enums.CheckoutStateSuccess,
	}}

	r := chi.NewRouter()
	r.Get("/checkout/links/{orderRef}", CheckoutLinkStatus(svc, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkout/links/qc_abc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.linkRef != "qc_abc" {
		t.Fatalf("expected order ref pass-through, got %q", svc.linkRef)
	}

	var envelope struct {
		Data checkoutsvc.LinkStatus `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Data.LinkStatus.Paid() || envelope.Data.State != enums.CheckoutStateSuccess {
		t.Fatalf("unexpected link status %+v", envelope.Data)
	}
}

func TestCheckoutLinkStatusUnknownRef(t *testing.T) {
	svc := &stubCheckoutService{linkErr: pkgerrors.New(pkgerrors.CodeNotFound, "no checkout attempt for order ref")}

	r := chi.NewRouter()
	r.Get("/checkout/links/{orderRef}", CheckoutLinkStatus(svc, nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkout/links/qc_ghost", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCheckoutReset(t *testing.T) {
	svc := &stubCheckoutService{}

	w := doRequest(t, CheckoutReset(svc, nil), http.MethodPost, "/checkout/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !svc.resetCalled {
		t.Fatal("expected reset call")
	}
}
