package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxindia/quickcart-backend/api/middleware"
	cartsvc "github.com/voxindia/quickcart-backend/internal/cart"
	checkoutsvc "github.com/voxindia/quickcart-backend/internal/checkout"
	cashfreewebhook "github.com/voxindia/quickcart-backend/internal/webhooks/cashfree"
	"github.com/voxindia/quickcart-backend/pkg/cashfree"
	"github.com/voxindia/quickcart-backend/pkg/config"
	"github.com/voxindia/quickcart-backend/pkg/enums"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/razorpay"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubPopup struct{}

func (stubPopup) CreateOrder(_ context.Context, amountRupees int, currency string) (*razorpay.Order, error) {
	return &razorpay.Order{ID: "order_stub", AmountPaise: amountRupees * 100, Currency: currency}, nil
}

func (stubPopup) VerifyPaymentSignature(string, string, string) error { return nil }

func (stubPopup) KeyID() string { return "rzp_test_key" }

type stubLinks struct{}

func (stubLinks) CreatePaymentLink(_ context.Context, linkID string, _ int, _ cashfree.Customer) (*cashfree.PaymentLink, error) {
	return &cashfree.PaymentLink{LinkID: linkID, URL: "https://pay.example.com/" + linkID}, nil
}

func (stubLinks) GetLinkStatus(context.Context, string) (enums.LinkOrderStatus, error) {
	return enums.LinkOrderStatusActive, nil
}

type stubNotifier struct{ sent int }

func (s *stubNotifier) SendOrderConfirmation(context.Context, string, types.OrderPayload) error {
	s.sent++
	return nil
}

type stubIdemStore struct{ keys map[string]bool }

func (s *stubIdemStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubIdemStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func (s *stubIdemStore) IdempotencyKey(scope, id string) string {
	return "qc:idempotency:" + scope + ":" + id
}

func newTestRouter(t *testing.T) (http.Handler, *stubNotifier) {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled, Output: io.Discard})
	cfg := &config.Config{}
	cfg.App.Env = "test"

	cartService, err := cartsvc.NewService(cartsvc.NewMemorySlot(), logg)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	notifier := &stubNotifier{}
	checkoutService, err := checkoutsvc.NewService(cartService, stubPopup{}, stubLinks{}, notifier, nil, logg, "INR", 0)
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}

	webhookService, err := cashfreewebhook.NewService(checkoutService, "whsec")
	if err != nil {
		t.Fatalf("webhook service: %v", err)
	}
	guard, err := cashfreewebhook.NewIdempotencyGuard(&stubIdemStore{keys: map[string]bool{}}, time.Hour, "cashfree")
	if err != nil {
		t.Fatalf("guard: %v", err)
	}

	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		Redis:           stubPinger{},
		CartService:     cartService,
		CheckoutService: checkoutService,
		WebhookService:  webhookService,
		WebhookGuard:    guard,
	}), notifier
}

func doJSON(t *testing.T, router http.Handler, method, path, session, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doJSON(t, router, http.MethodGet, "/health/live", "", ""); w.Code != http.StatusOK {
		t.Fatalf("health live: expected 200, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/health/ready", "", ""); w.Code != http.StatusOK {
		t.Fatalf("health ready: expected 200, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/metrics", "", ""); w.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", w.Code)
	}
}

func TestCartFlowAwardsFreeGlue(t *testing.T) {
	router, _ := newTestRouter(t)
	session := "3fc3c6f5-6c7e-4f0a-a3fe-7c4d1c1f4ad9"

	body := `{"product_id":"p1","product_name":"Louver Panel","mode":"panel","price":1500,"quantity":1,"area":40}`
	w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", session, body)
	if w.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Data struct {
			Items []types.CartItem `json:"items"`
			Total int              `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Items) != 2 {
		t.Fatalf("expected paid line plus glue line, got %v", envelope.Data.Items)
	}
	glue := envelope.Data.Items[1]
	if !glue.IsGlue || glue.Price != 0 || glue.Quantity != 1 {
		t.Fatalf("unexpected glue line %+v", glue)
	}
	if envelope.Data.Total != 1500 {
		t.Fatalf("glue must be free, total %d", envelope.Data.Total)
	}
}

func TestFullCODCheckout(t *testing.T) {
	router, notifier := newTestRouter(t)
	session := "67b2c9c0-14c6-4c39-a1be-cfb2aa2ea571"

	add := `{"product_id":"p1","product_name":"Louver Panel","mode":"panel","price":1500,"quantity":2,"area":10}`
	if w := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", session, add); w.Code != http.StatusOK {
		t.Fatalf("add: got %d", w.Code)
	}

	submit := `{
	  "method": "cod",
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
	w := doJSON(t, router, http.MethodPost, "/api/v1/checkout", session, submit)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if notifier.sent != 1 {
		t.Fatalf("expected one confirmation mail, got %d", notifier.sent)
	}

	// The cart is cleared after a confirmed order.
	w = doJSON(t, router, http.MethodGet, "/api/v1/cart", session, "")
	var envelope struct {
		Data struct {
			Items []types.CartItem `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Items) != 0 {
		t.Fatalf("expected empty cart, got %v", envelope.Data.Items)
	}
}

func TestWebhookRejectsUnsignedDelivery(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/webhooks/cashfree", "", `{"type":"PAYMENT_LINK_EVENT","data":{"link_id":"qc_x","link_status":"PAID"}}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
