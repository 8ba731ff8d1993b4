package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voxindia/quickcart-backend/internal/mail"
	"github.com/voxindia/quickcart-backend/pkg/cashfree"
	"github.com/voxindia/quickcart-backend/pkg/enums"
	pkgerrors "github.com/voxindia/quickcart-backend/pkg/errors"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/metrics"
	"github.com/voxindia/quickcart-backend/pkg/razorpay"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

type cartReader interface {
	Get(ctx context.Context, sessionID string) ([]types.CartItem, error)
	Clear(ctx context.Context, sessionID string) error
}

type popupGateway interface {
	CreateOrder(ctx context.Context, amountRupees int, currency string) (*razorpay.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
	KeyID() string
}

type linkGateway interface {
	CreatePaymentLink(ctx context.Context, linkID string, amountRupees int, customer cashfree.Customer) (*cashfree.PaymentLink, error)
	GetLinkStatus(ctx context.Context, linkID string) (enums.LinkOrderStatus, error)
}

// SubmitInput is the checkout form: billing details plus the chosen method.
type SubmitInput struct {
	Billing types.BillingDetails
	Method  enums.PaymentMethod
}

// SubmitResult tells the client how to continue the attempt. Exactly one of
// the provider sections is populated, matching the method.
type SubmitResult struct {
	OrderRef string              `json:"order_ref"`
	Method   enums.PaymentMethod `json:"method"`
	State    enums.CheckoutState `json:"state"`

	// Razorpay popup checkout.
	RazorpayOrderID string `json:"razorpay_order_id,omitempty"`
	RazorpayKeyID   string `json:"razorpay_key_id,omitempty"`
	AmountPaise     int    `json:"amount_paise,omitempty"`
	Currency        string `json:"currency,omitempty"`

	// Cashfree hosted payment page.
	PaymentLinkURL string `json:"payment_link_url,omitempty"`

	// COD confirms inline.
	Confirmed bool `json:"confirmed,omitempty"`
}

// Confirmation is the terminal success acknowledgment.
type Confirmation struct {
	OrderRef    string              `json:"order_ref"`
	Method      enums.PaymentMethod `json:"method"`
	TotalAmount int                 `json:"total_amount"`
}

// LinkStatus is the reconciled view of a hosted-page attempt: the gateway's
// current link status alongside the attempt's local state.
type LinkStatus struct {
	OrderRef   string                `json:"order_ref"`
	LinkStatus enums.LinkOrderStatus `json:"link_status"`
	State      enums.CheckoutState   `json:"state"`
}

// AttemptStatus is the queryable view of a session's current attempt.
type AttemptStatus struct {
	OrderRef string              `json:"order_ref"`
	Method   enums.PaymentMethod `json:"method"`
	State    enums.CheckoutState `json:"state"`
	Reason   enums.FailureReason `json:"reason,omitempty"`
}

// Service orchestrates checkout attempts across the payment methods. Each
// session runs at most one attempt at a time; the cart survives every
// failure path and is cleared only on confirmed success (or, for the hosted
// payment page, at redirect time).
type Service interface {
	Submit(ctx context.Context, sessionID string, input SubmitInput) (*SubmitResult, error)
	CompleteRazorpay(ctx context.Context, sessionID, providerOrderID, paymentID, signature string) (*Confirmation, error)
	HandleLinkPaid(ctx context.Context, orderRef string) error
	QueryLinkStatus(ctx context.Context, orderRef string) (*LinkStatus, error)
	Status(ctx context.Context, sessionID string) (*AttemptStatus, error)
	Reset(ctx context.Context, sessionID string) error
}

type service struct {
	carts    cartReader
	popup    popupGateway
	links    linkGateway
	notifier mail.Notifier
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	currency string
	tracker  *tracker
}

// NewService wires the checkout orchestrator.
func NewService(
	carts cartReader,
	popup popupGateway,
	links linkGateway,
	notifier mail.Notifier,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	currency string,
	attemptRetention time.Duration,
) (Service, error) {
	if carts == nil {
		return nil, errors.New("checkout: cart reader is required")
	}
	if popup == nil {
		return nil, errors.New("checkout: razorpay gateway is required")
	}
	if links == nil {
		return nil, errors.New("checkout: cashfree gateway is required")
	}
	if notifier == nil {
		return nil, errors.New("checkout: mail notifier is required")
	}
	if logg == nil {
		return nil, errors.New("checkout: logger is required")
	}
	if currency == "" {
		currency = "INR"
	}
	return &service{
		carts:    carts,
		popup:    popup,
		links:    links,
		notifier: notifier,
		metrics:  checkoutMetrics,
		logg:     logg,
		currency: currency,
		tracker:  newTracker(attemptRetention),
	}, nil
}

func (s *service) Submit(ctx context.Context, sessionID string, input SubmitInput) (*SubmitResult, error) {
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]string{"method": input.Method.String()})
	}
	if blank := input.Billing.BlankFields(); len(blank) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing details incomplete").
			WithDetails(map[string][]string{"blank_fields": blank})
	}

	items, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	payload := types.OrderPayload{
		Billing:     input.Billing,
		Items:       items,
		TotalAmount: types.CartTotal(items),
		Method:      input.Method.Label(),
	}

	orderRef := "qc_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	attempt, started := s.tracker.begin(sessionID, orderRef, input.Method, payload)
	if !started {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a checkout attempt is already in progress").
			WithDetails(map[string]string{"order_ref": attempt.OrderRef, "state": attempt.State.String()})
	}
	s.metrics.IncAttempt(input.Method.String())

	ctx = s.logg.WithOrderID(ctx, orderRef)
	s.logg.Info(ctx, "checkout attempt started")

	switch input.Method {
	case enums.PaymentMethodRazorpay:
		return s.submitRazorpay(ctx, sessionID, attempt)
	case enums.PaymentMethodCashfree:
		return s.submitCashfree(ctx, sessionID, attempt)
	default:
		return s.submitCOD(ctx, sessionID, attempt)
	}
}

func (s *service) submitRazorpay(ctx context.Context, sessionID string, attempt Attempt) (*SubmitResult, error) {
	s.tracker.setState(sessionID, enums.CheckoutStateAwaitingProvider)

	start := time.Now()
	order, err := s.popup.CreateOrder(ctx, attempt.Payload.TotalAmount, s.currency)
	s.metrics.ObserveProvider("razorpay", "create_order", time.Since(start))
	if err != nil {
		return nil, s.failAttempt(ctx, sessionID, attempt, err)
	}
	s.tracker.setProviderOrder(sessionID, order.ID)

	return &SubmitResult{
		OrderRef:        attempt.OrderRef,
		Method:          attempt.Method,
		State:           enums.CheckoutStateAwaitingProvider,
		RazorpayOrderID: order.ID,
		RazorpayKeyID:   s.popup.KeyID(),
		AmountPaise:     order.AmountPaise,
		Currency:        order.Currency,
	}, nil
}

func (s *service) submitCashfree(ctx context.Context, sessionID string, attempt Attempt) (*SubmitResult, error) {
	s.tracker.setState(sessionID, enums.CheckoutStateAwaitingProvider)

	customer := cashfree.Customer{
		Name:  attempt.Payload.Billing.FullName,
		Email: attempt.Payload.Billing.Email,
		Phone: attempt.Payload.Billing.Phone,
	}
	start := time.Now()
	link, err := s.links.CreatePaymentLink(ctx, attempt.OrderRef, attempt.Payload.TotalAmount, customer)
	s.metrics.ObserveProvider("cashfree", "create_link", time.Since(start))
	if err != nil {
		return nil, s.failAttempt(ctx, sessionID, attempt, err)
	}
	s.tracker.setProviderOrder(sessionID, link.LinkID)

	// The order mail goes out now, before control passes to the hosted page.
	// Settlement replays must not send it again.
	if err := s.notifier.SendOrderConfirmation(ctx, attempt.OrderRef, attempt.Payload); err != nil {
		s.logg.Error(ctx, "order confirmation mail failed", err)
	}

	// The session leaves for the hosted page now; the cart is emptied before
	// redirect so a completed payment never lands on a stale cart.
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logg.Error(ctx, "clearing cart before payment-link redirect failed", err)
	}

	return &SubmitResult{
		OrderRef:       attempt.OrderRef,
		Method:         attempt.Method,
		State:          enums.CheckoutStateAwaitingProvider,
		PaymentLinkURL: link.URL,
	}, nil
}

func (s *service) submitCOD(ctx context.Context, sessionID string, attempt Attempt) (*SubmitResult, error) {
	s.finishSuccess(ctx, sessionID, attempt, true, true)

	return &SubmitResult{
		OrderRef:  attempt.OrderRef,
		Method:    attempt.Method,
		State:     enums.CheckoutStateSuccess,
		Confirmed: true,
	}, nil
}

func (s *service) CompleteRazorpay(ctx context.Context, sessionID, providerOrderID, paymentID, signature string) (*Confirmation, error) {
	attempt, ok := s.tracker.get(sessionID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout attempt for session")
	}
	if attempt.Method != enums.PaymentMethodRazorpay {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "attempt is not awaiting razorpay payment").
			WithDetails(map[string]string{"state": attempt.State.String()})
	}
	if attempt.ProviderOrderID != providerOrderID {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment does not match the pending order")
	}

	ctx = s.logg.WithOrderID(ctx, attempt.OrderRef)

	// The compare-and-set claims the attempt for this caller; a duplicate
	// callback loses it and gets the conflict.
	attempt, ok = s.tracker.transition(sessionID, enums.CheckoutStateAwaitingProvider, enums.CheckoutStateVerifying)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "attempt is not awaiting razorpay payment").
			WithDetails(map[string]string{"state": attempt.State.String()})
	}

	if err := s.popup.VerifyPaymentSignature(providerOrderID, paymentID, signature); err != nil {
		return nil, s.failAttempt(ctx, sessionID, attempt, err)
	}

	s.finishSuccess(ctx, sessionID, attempt, true, true)
	return &Confirmation{
		OrderRef:    attempt.OrderRef,
		Method:      attempt.Method,
		TotalAmount: attempt.Payload.TotalAmount,
	}, nil
}

// HandleLinkPaid settles a hosted-page attempt after the gateway reports
// payment. The attempt's mail already went out at link creation and the cart
// was cleared at redirect time, so settlement only flips state; replays of a
// settled ref are acknowledged.
func (s *service) HandleLinkPaid(ctx context.Context, orderRef string) error {
	attempt, outcome := s.tracker.settle(orderRef)
	switch outcome {
	case settleMissing:
		return pkgerrors.New(pkgerrors.CodeNotFound, "no checkout attempt for order ref")
	case settleReplay:
		return nil
	case settleConflict:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "attempt is not awaiting payment").
			WithDetails(map[string]string{"state": attempt.State.String()})
	}

	ctx = s.logg.WithOrderID(ctx, attempt.OrderRef)
	s.metrics.IncSuccess(attempt.Method.String())
	s.logg.Info(ctx, "checkout attempt succeeded")
	return nil
}

// QueryLinkStatus asks the gateway for the payment link's current status, the
// return-URL side of out-of-band reconciliation. A PAID answer settles the
// attempt the same way the webhook would, so whichever signal lands first
// wins and the other becomes a no-op.
func (s *service) QueryLinkStatus(ctx context.Context, orderRef string) (*LinkStatus, error) {
	attempt, ok := s.tracker.getByRef(orderRef)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout attempt for order ref")
	}
	if attempt.Method != enums.PaymentMethodCashfree {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "attempt has no payment link").
			WithDetails(map[string]string{"method": attempt.Method.String()})
	}

	ctx = s.logg.WithOrderID(ctx, attempt.OrderRef)
	start := time.Now()
	status, err := s.links.GetLinkStatus(ctx, attempt.OrderRef)
	s.metrics.ObserveProvider("cashfree", "link_status", time.Since(start))
	if err != nil {
		return nil, err
	}

	state := attempt.State
	if status.Paid() {
		settled, outcome := s.tracker.settle(orderRef)
		if outcome == settleSettled {
			s.metrics.IncSuccess(settled.Method.String())
			s.logg.Info(ctx, "checkout attempt succeeded")
		}
		if outcome != settleMissing {
			state = settled.State
		}
	}
	return &LinkStatus{
		OrderRef:   attempt.OrderRef,
		LinkStatus: status,
		State:      state,
	}, nil
}

func (s *service) Status(_ context.Context, sessionID string) (*AttemptStatus, error) {
	attempt, ok := s.tracker.get(sessionID)
	if !ok {
		return &AttemptStatus{State: enums.CheckoutStateIdle}, nil
	}
	return &AttemptStatus{
		OrderRef: attempt.OrderRef,
		Method:   attempt.Method,
		State:    attempt.State,
		Reason:   attempt.Reason,
	}, nil
}

// Reset abandons the session's attempt so the next submit starts clean. The
// cart is left as-is.
func (s *service) Reset(_ context.Context, sessionID string) error {
	s.tracker.reset(sessionID)
	return nil
}

// finishSuccess marks the attempt settled, optionally clears the cart, and
// optionally sends the confirmation mail. Mail failure is logged and
// swallowed: the payment is already taken and must never look failed because
// SMTP is down.
func (s *service) finishSuccess(ctx context.Context, sessionID string, attempt Attempt, clearCart, notify bool) {
	s.tracker.setState(sessionID, enums.CheckoutStateSuccess)
	s.metrics.IncSuccess(attempt.Method.String())
	s.logg.Info(ctx, "checkout attempt succeeded")

	if clearCart {
		if err := s.carts.Clear(ctx, sessionID); err != nil {
			s.logg.Error(ctx, "clearing cart after successful checkout failed", err)
		}
	}

	if notify {
		if err := s.notifier.SendOrderConfirmation(ctx, attempt.OrderRef, attempt.Payload); err != nil {
			s.logg.Error(ctx, "order confirmation mail failed", err)
		}
	}
}

// failAttempt records the terminal failure with its classified reason and
// returns the original error for the transport layer to map.
func (s *service) failAttempt(ctx context.Context, sessionID string, attempt Attempt, err error) error {
	reason := classifyFailure(err)
	s.tracker.fail(sessionID, reason)
	s.metrics.IncFailure(attempt.Method.String(), reason.String())
	s.logg.Error(ctx, "checkout attempt failed", err)
	return err
}

func classifyFailure(err error) enums.FailureReason {
	appErr := pkgerrors.As(err)
	if appErr == nil {
		return enums.FailureReasonNetwork
	}
	switch appErr.Code() {
	case pkgerrors.CodeProvider:
		return enums.FailureReasonProviderError
	case pkgerrors.CodeVerification:
		return enums.FailureReasonSignatureMismatch
	case pkgerrors.CodeValidation:
		return enums.FailureReasonValidation
	default:
		return enums.FailureReasonNetwork
	}
}
