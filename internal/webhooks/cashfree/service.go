package cashfreewebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/voxindia/quickcart-backend/pkg/enums"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
)

type linkSettler interface {
	HandleLinkPaid(ctx context.Context, orderRef string) error
}

// Event is the payment-link notification body. The gateway posts it with an
// HMAC signature over the raw payload in the x-webhook-signature header.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	LinkID         string `json:"link_id"`
	LinkStatus     string `json:"link_status"`
	LinkAmountPaid string `json:"link_amount_paid"`
}

// ID derives the idempotency key for a delivery. Status transitions for the
// same link are distinct events; replays of one transition are not.
func (e Event) ID() string {
	return e.Data.LinkID + "|" + strings.ToUpper(e.Data.LinkStatus)
}

// Service settles payment-link attempts from gateway notifications.
type Service struct {
	checkout linkSettler
	secret   string
}

func NewService(checkout linkSettler, webhookSecret string) (*Service, error) {
	if checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	if strings.TrimSpace(webhookSecret) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook secret required")
	}
	return &Service{checkout: checkout, secret: webhookSecret}, nil
}

// VerifySignature checks the base64 HMAC-SHA256 of the raw payload against
// the signature header.
func (s *Service) VerifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// HandleEvent applies a verified notification. Only PAID transitions settle
// the attempt; every other status is acknowledged and dropped.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event required")
	}
	if event.Data.LinkID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "link id missing")
	}

	status := enums.LinkOrderStatus(strings.ToUpper(event.Data.LinkStatus))
	if !status.Paid() {
		return nil
	}
	return s.checkout.HandleLinkPaid(ctx, event.Data.LinkID)
}
