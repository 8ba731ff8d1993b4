package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/voxindia/quickcart-backend/pkg/config"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

// Notifier delivers the order-confirmation email after a successful checkout.
// Delivery failure never unwinds a completed payment; callers log and move on.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, orderRef string, order types.OrderPayload) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type mailer struct {
	cfg  config.MailConfig
	logg *logger.Logger
	tmpl *template.Template
	send sendFunc
}

// NewMailer builds an SMTP-backed notifier from the mail configuration.
func NewMailer(cfg config.MailConfig, logg *logger.Logger) (Notifier, error) {
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("mail: from address is required")
	}
	if strings.TrimSpace(cfg.AdminEmail) == "" {
		return nil, errors.New("mail: admin address is required")
	}
	if logg == nil {
		return nil, errors.New("mail: logger is required")
	}
	tmpl, err := template.New("order_confirmation").Parse(orderConfirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("mail: parsing template: %w", err)
	}
	return &mailer{cfg: cfg, logg: logg, tmpl: tmpl, send: smtp.SendMail}, nil
}

type confirmationLine struct {
	Name     string
	Quantity int
	Subtotal string
}

type confirmationData struct {
	StoreName string
	OrderRef  string
	Customer  types.BillingDetails
	Lines     []confirmationLine
	Total     string
	Method    string
	Address   string
}

// SendOrderConfirmation mails the order summary to the customer and a copy
// to the store admin.
func (m *mailer) SendOrderConfirmation(ctx context.Context, orderRef string, order types.OrderPayload) error {
	data := confirmationData{
		StoreName: m.cfg.StoreName,
		OrderRef:  orderRef,
		Customer:  order.Billing,
		Total:     rupees(order.TotalAmount),
		Method:    order.Method,
		Address:   formatAddress(order.Billing),
	}
	for _, item := range order.Items {
		name := item.ProductName
		if name == "" {
			name = item.ProductID
		}
		data.Lines = append(data.Lines, confirmationLine{
			Name:     name,
			Quantity: item.Quantity,
			Subtotal: rupees(item.Subtotal()),
		})
	}

	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering order confirmation: %w", err)
	}

	subject := fmt.Sprintf("%s order confirmation %s", m.cfg.StoreName, orderRef)
	recipients := []string{order.Billing.Email, m.cfg.AdminEmail}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From,
		strings.Join(recipients, ", "),
		subject,
		body.String(),
	)

	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.SMTPHost)
	}

	if err := m.send(m.cfg.SMTPAddress, auth, m.cfg.From, recipients, []byte(message)); err != nil {
		return fmt.Errorf("sending order confirmation: %w", err)
	}
	m.logg.Info(m.logg.WithOrderID(ctx, orderRef), "order confirmation sent")
	return nil
}

func rupees(amount int) string {
	return fmt.Sprintf("₹%d", amount)
}

func formatAddress(billing types.BillingDetails) string {
	parts := []string{billing.AddressLine1, billing.AddressLine2, billing.City, billing.State, billing.Zip}
	var kept []string
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, strings.TrimSpace(part))
		}
	}
	return strings.Join(kept, ", ")
}

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>{{.StoreName}} — thank you for your order!</h2>
  <p>Hi {{.Customer.FullName}},</p>
  <p>Your order <strong>{{.OrderRef}}</strong> has been received.</p>
  <table border="0" cellpadding="6" cellspacing="0">
    <tr><th align="left">Item</th><th align="left">Qty</th><th align="left">Subtotal</th></tr>
    {{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Subtotal}}</td></tr>
    {{end}}
    <tr><td colspan="2"><strong>Total</strong></td><td><strong>{{.Total}}</strong></td></tr>
  </table>
  <p>Payment method: {{.Method}}</p>
  <p>Delivery address: {{.Address}}</p>
  <p>We will reach out on {{.Customer.Phone}} if anything needs attention.</p>
</body>
</html>`
