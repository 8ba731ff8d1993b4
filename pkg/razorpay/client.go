package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	rzpsdk "github.com/razorpay/razorpay-go"

	"github.com/voxindia/quickcart-backend/pkg/config"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
)

var (
	errKeyIDRequired  = errors.New("razorpay key id is required")
	errSecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired = errors.New("razorpay logger is required")
)

// Order is the subset of a Razorpay order the checkout flow needs: the
// provider order id plus the amount/currency echoed back for the client SDK.
type Order struct {
	ID          string
	AmountPaise int
	Currency    string
	Receipt     string
}

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the Razorpay SDK with credential validation, logging, and
// error mapping. Payment signature checks run locally against the key secret.
type Client struct {
	orders    orderCreator
	keyID     string
	keySecret string
	logger    *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errSecretRequired
	}

	sdk := rzpsdk.NewClient(keyID, keySecret)
	c := &Client{
		orders:    sdk.Order,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logg,
	}
	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the public key the browser SDK needs to open checkout.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// CreateOrder registers a provider order for the given rupee amount.
func (c *Client) CreateOrder(ctx context.Context, amountRupees int, currency string) (*Order, error) {
	if amountRupees <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}
	if currency == "" {
		currency = "INR"
	}
	receipt := "receipt_" + uuid.NewString()

	data := map[string]interface{}{
		"amount":   amountRupees * 100,
		"currency": currency,
		"receipt":  receipt,
	}
	raw, err := c.orders.Create(data, nil)
	if err != nil {
		c.logger.Error(ctx, "razorpay order create failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "creating razorpay order")
	}

	id, _ := raw["id"].(string)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeProvider, "razorpay order response missing id")
	}

	order := &Order{
		ID:          id,
		AmountPaise: amountRupees * 100,
		Currency:    currency,
		Receipt:     receipt,
	}
	c.logger.Info(c.logger.WithOrderID(ctx, order.ID), "razorpay order created")
	return order, nil
}

// VerifyPaymentSignature checks the checkout callback signature:
// HMAC-SHA256 over "<order_id>|<payment_id>" keyed with the key secret,
// hex encoded. A mismatch is a verification error, never a provider error.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id, and signature are required")
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return pkgerrors.New(pkgerrors.CodeVerification, "payment signature mismatch")
	}
	return nil
}
