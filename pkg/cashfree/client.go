package cashfree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/voxindia/quickcart-backend/pkg/config"
	"github.com/voxindia/quickcart-backend/pkg/enums"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	apiVersion = "2023-08-01"
)

var (
	errClientIDRequired      = errors.New("cashfree client id is required")
	errClientSecretRequired  = errors.New("cashfree client secret is required")
	errWebhookSecretRequired = errors.New("cashfree webhook secret is required")
	errLoggerRequired        = errors.New("cashfree logger is required")
	errInvalidCashfreeEnv    = fmt.Errorf("cashfree environment must be %q or %q", sandboxEnv, productionEnv)
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://sandbox.cashfree.com/pg",
	productionEnv: "https://api.cashfree.com/pg",
}

// Customer identifies the payer on a payment link.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// PaymentLink is the hosted-page handle returned by link creation.
type PaymentLink struct {
	LinkID string
	URL    string
}

// Client talks to the Cashfree payment-links API with centralized auth,
// logging, and error mapping.
type Client struct {
	http          *resty.Client
	environment   string
	webhookSecret string
	returnURL     string
	logger        *logger.Logger
}

// NewClient initializes the Cashfree wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.CashfreeConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, errClientIDRequired
	}
	clientSecret := strings.TrimSpace(cfg.ClientSecret)
	if clientSecret == "" {
		return nil, errClientSecretRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}
	env := cfg.Environment()
	baseURL, ok := baseURLs[env]
	if !ok {
		return nil, errInvalidCashfreeEnv
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeaders(map[string]string{
			"x-client-id":     clientID,
			"x-client-secret": clientSecret,
			"x-api-version":   apiVersion,
			"Content-Type":    "application/json",
			"Accept":          "application/json",
		})

	c := &Client{
		http:          httpClient,
		environment:   env,
		webhookSecret: webhookSecret,
		returnURL:     cfg.ReturnURL,
		logger:        logg,
	}
	logg.Info(ctx, "cashfree client initialized")
	return c, nil
}

// Environment reports the normalized Cashfree environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// WebhookSecret returns the key for webhook signature checks.
func (c *Client) WebhookSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// CreatePaymentLink registers a hosted payment page for the order and
// returns its redirect URL. Amounts are rupees.
func (c *Client) CreatePaymentLink(ctx context.Context, linkID string, amountRupees int, customer Customer) (*PaymentLink, error) {
	if linkID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link id is required")
	}
	if amountRupees <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link amount must be positive")
	}

	body := map[string]any{
		"link_id":       linkID,
		"link_amount":   decimal.NewFromInt(int64(amountRupees)).InexactFloat64(),
		"link_currency": "INR",
		"link_purpose":  "Order payment",
		"customer_details": map[string]string{
			"customer_name":  customer.Name,
			"customer_email": customer.Email,
			"customer_phone": customer.Phone,
		},
		"link_notify": map[string]bool{
			"send_email": false,
			"send_sms":   false,
		},
	}
	if c.returnURL != "" {
		body["link_meta"] = map[string]string{"return_url": c.returnURL}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/links")
	if err != nil {
		c.logger.Error(ctx, "cashfree link create failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "creating cashfree payment link")
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Error(ctx, "cashfree link create rejected", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.Body()))
		return nil, pkgerrors.New(pkgerrors.CodeProvider, fmt.Sprintf("cashfree link create returned status %d", resp.StatusCode()))
	}

	var parsed struct {
		LinkID  string `json:"link_id"`
		LinkURL string `json:"link_url"`
	}
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "parsing cashfree link response")
	}
	if parsed.LinkURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeProvider, "cashfree link response missing link_url")
	}

	c.logger.Info(c.logger.WithOrderID(ctx, parsed.LinkID), "cashfree payment link created")
	return &PaymentLink{LinkID: parsed.LinkID, URL: parsed.LinkURL}, nil
}

// GetLinkStatus fetches the current status of a payment link.
func (c *Client) GetLinkStatus(ctx context.Context, linkID string) (enums.LinkOrderStatus, error) {
	if linkID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "link id is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Get("/links/" + linkID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeProvider, err, "fetching cashfree link status")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "cashfree link not found")
	}
	if resp.StatusCode() != http.StatusOK {
		return "", pkgerrors.New(pkgerrors.CodeProvider, fmt.Sprintf("cashfree link status returned status %d", resp.StatusCode()))
	}

	var parsed struct {
		LinkStatus string `json:"link_status"`
	}
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeProvider, err, "parsing cashfree link status")
	}
	return enums.LinkOrderStatus(strings.ToUpper(parsed.LinkStatus)), nil
}
