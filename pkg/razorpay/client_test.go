package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/voxindia/quickcart-backend/pkg/config"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
)

type stubOrders struct {
	data map[string]interface{}
	resp map[string]interface{}
	err  error
}

func (s *stubOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.data = data
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "razorpay-test", Level: zerolog.Disabled, Output: io.Discard})
}

func testClient(orders orderCreator) *Client {
	return &Client{orders: orders, keyID: "rzp_test_key", keySecret: "shhh", logger: testLogger()}
}

func TestNewClientValidatesCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if _, err := NewClient(ctx, config.RazorpayConfig{KeySecret: "s"}, testLogger()); err == nil {
		t.Fatal("expected key id error")
	}
	if _, err := NewClient(ctx, config.RazorpayConfig{KeyID: "k"}, testLogger()); err == nil {
		t.Fatal("expected key secret error")
	}
	if _, err := NewClient(ctx, config.RazorpayConfig{KeyID: "k", KeySecret: "s"}, nil); err == nil {
		t.Fatal("expected logger error")
	}
}

func TestCreateOrderConvertsToPaise(t *testing.T) {
	t.Parallel()

	orders := &stubOrders{resp: map[string]interface{}{"id": "order_abc123"}}
	client := testClient(orders)

	order, err := client.CreateOrder(context.Background(), 2499, "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if got := orders.data["amount"]; got != 249900 {
		t.Fatalf("expected amount 249900 paise, got %v", got)
	}
	if got := orders.data["currency"]; got != "INR" {
		t.Fatalf("expected INR default, got %v", got)
	}
	if order.ID != "order_abc123" {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if order.Receipt == "" {
		t.Fatal("expected generated receipt")
	}
}

func TestCreateOrderMapsProviderFailure(t *testing.T) {
	t.Parallel()

	client := testClient(&stubOrders{err: errors.New("503 from gateway")})

	_, err := client.CreateOrder(context.Background(), 100, "INR")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeProvider {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	client := testClient(&stubOrders{})
	if _, err := client.CreateOrder(context.Background(), 0, "INR"); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for zero amount")
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	t.Parallel()

	client := testClient(&stubOrders{})

	mac := hmac.New(sha256.New, []byte("shhh"))
	mac.Write([]byte("order_1|pay_1"))
	valid := hex.EncodeToString(mac.Sum(nil))

	if err := client.VerifyPaymentSignature("order_1", "pay_1", valid); err != nil {
		t.Fatalf("expected valid signature to pass: %v", err)
	}

	err := client.VerifyPaymentSignature("order_1", "pay_1", "deadbeef")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeVerification {
		t.Fatalf("expected verification error, got %v", err)
	}

	if err := client.VerifyPaymentSignature("", "pay_1", valid); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for missing order id")
	}
}
