package checkout

import (
	"sync"
	"time"

	"github.com/voxindia/quickcart-backend/pkg/enums"
	"github.com/voxindia/quickcart-backend/pkg/types"
)

// defaultAttemptRetention bounds how long an attempt is kept waiting for
// out-of-band settlement before it can be swept.
const defaultAttemptRetention = 24 * time.Hour

// sweepEvery throttles full-map sweeps; eviction is otherwise lazy on lookup.
const sweepEvery = time.Minute

// Attempt is the in-memory record of one checkout run for a session. The
// payload snapshot is kept until a terminal state so deferred confirmations
// (payment-link webhooks) can still mail the order summary.
type Attempt struct {
	SessionID       string
	OrderRef        string
	Method          enums.PaymentMethod
	State           enums.CheckoutState
	Reason          enums.FailureReason
	ProviderOrderID string
	Payload         types.OrderPayload
	StartedAt       time.Time
	FinishedAt      time.Time
}

// settleOutcome reports what settle found under the lock.
type settleOutcome int

const (
	settleMissing settleOutcome = iota
	settleSettled
	settleReplay
	settleConflict
)

// tracker holds the active attempt per session plus a reverse index from
// order ref to session for webhook lookups. Sessions are single-attempt:
// a new submit replaces a terminal attempt and is refused mid-flight.
// Lookups return value copies and every state change happens under the
// lock, so concurrent settlement signals cannot interleave.
type tracker struct {
	mu        sync.Mutex
	retention time.Duration
	lastSweep time.Time
	bySession map[string]*Attempt
	byRef     map[string]string
}

func newTracker(retention time.Duration) *tracker {
	if retention <= 0 {
		retention = defaultAttemptRetention
	}
	return &tracker{
		retention: retention,
		lastSweep: time.Now(),
		bySession: make(map[string]*Attempt),
		byRef:     make(map[string]string),
	}
}

// begin installs a fresh attempt in the validating state. It reports false
// when the session already has an attempt in flight.
func (t *tracker) begin(sessionID, orderRef string, method enums.PaymentMethod, payload types.OrderPayload) (Attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.maybeSweep(now)

	if existing, ok := t.bySession[sessionID]; ok && existing.State.InFlight() && !t.stale(existing, now) {
		return *existing, false
	}
	if existing, ok := t.bySession[sessionID]; ok {
		delete(t.byRef, existing.OrderRef)
	}

	attempt := &Attempt{
		SessionID: sessionID,
		OrderRef:  orderRef,
		Method:    method,
		State:     enums.CheckoutStateValidating,
		Payload:   payload,
		StartedAt: now,
	}
	t.bySession[sessionID] = attempt
	t.byRef[orderRef] = sessionID
	return *attempt, true
}

func (t *tracker) get(sessionID string) (Attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	attempt, ok := t.bySession[sessionID]
	if !ok {
		return Attempt{}, false
	}
	if t.stale(attempt, time.Now()) {
		t.evict(sessionID, attempt)
		return Attempt{}, false
	}
	return *attempt, true
}

func (t *tracker) getByRef(orderRef string) (Attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sessionID, ok := t.byRef[orderRef]
	if !ok {
		return Attempt{}, false
	}
	attempt, ok := t.bySession[sessionID]
	if !ok {
		return Attempt{}, false
	}
	if t.stale(attempt, time.Now()) {
		t.evict(sessionID, attempt)
		return Attempt{}, false
	}
	return *attempt, true
}

// settle flips an awaiting attempt to success, exactly once per order ref.
// Replays of a settled ref and settlement signals racing each other all
// resolve here, under the lock.
func (t *tracker) settle(orderRef string) (Attempt, settleOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sessionID, ok := t.byRef[orderRef]
	if !ok {
		return Attempt{}, settleMissing
	}
	attempt, ok := t.bySession[sessionID]
	if !ok {
		return Attempt{}, settleMissing
	}
	switch attempt.State {
	case enums.CheckoutStateSuccess:
		return *attempt, settleReplay
	case enums.CheckoutStateAwaitingProvider:
		attempt.State = enums.CheckoutStateSuccess
		attempt.FinishedAt = time.Now()
		return *attempt, settleSettled
	default:
		return *attempt, settleConflict
	}
}

// transition applies a compare-and-set state change for the session's
// attempt, reporting whether it took effect.
func (t *tracker) transition(sessionID string, from, to enums.CheckoutState) (Attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	attempt, ok := t.bySession[sessionID]
	if !ok {
		return Attempt{}, false
	}
	if attempt.State != from {
		return *attempt, false
	}
	attempt.State = to
	if to.Terminal() {
		attempt.FinishedAt = time.Now()
	}
	return *attempt, true
}

func (t *tracker) setState(sessionID string, state enums.CheckoutState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if attempt, ok := t.bySession[sessionID]; ok {
		attempt.State = state
		if state.Terminal() {
			attempt.FinishedAt = time.Now()
		}
	}
}

func (t *tracker) setProviderOrder(sessionID, providerOrderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if attempt, ok := t.bySession[sessionID]; ok {
		attempt.ProviderOrderID = providerOrderID
	}
}

func (t *tracker) fail(sessionID string, reason enums.FailureReason) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if attempt, ok := t.bySession[sessionID]; ok {
		attempt.State = enums.CheckoutStateFailed
		attempt.Reason = reason
		attempt.FinishedAt = time.Now()
	}
}

// reset drops the session's attempt so the next submit starts from idle.
func (t *tracker) reset(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if attempt, ok := t.bySession[sessionID]; ok {
		t.evict(sessionID, attempt)
	}
}

// stale reports whether the attempt outlived the retention window, anchored
// on FinishedAt for terminal attempts and StartedAt for abandoned ones.
func (t *tracker) stale(attempt *Attempt, now time.Time) bool {
	anchor := attempt.StartedAt
	if attempt.State.Terminal() && !attempt.FinishedAt.IsZero() {
		anchor = attempt.FinishedAt
	}
	return now.Sub(anchor) > t.retention
}

// evict removes the attempt from both maps. Caller holds the lock.
func (t *tracker) evict(sessionID string, attempt *Attempt) {
	delete(t.byRef, attempt.OrderRef)
	delete(t.bySession, sessionID)
}

// maybeSweep drops every stale attempt, throttled so begin stays cheap. The
// session id is client-supplied, so without this abandoned sessions would
// pin their cart payloads for the life of the process. Caller holds the
// lock.
func (t *tracker) maybeSweep(now time.Time) {
	if now.Sub(t.lastSweep) < sweepEvery {
		return
	}
	t.lastSweep = now
	for sessionID, attempt := range t.bySession {
		if t.stale(attempt, now) {
			t.evict(sessionID, attempt)
		}
	}
}
