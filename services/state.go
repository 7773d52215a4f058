package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"linkpay/config"
	"linkpay/templates"
	"linkpay/utils"
)

// ProcessingStep is the client-local animation state shown between a
// confirmed settlement and the redirect to the success view.
type ProcessingStep string

const (
	StepSent       ProcessingStep = "sent"
	StepConfirming ProcessingStep = "confirming"
	StepReceived   ProcessingStep = "received"
)

// CheckoutSession owns the UI-visible state of one checkout: the current
// PaymentData, the expired flag, the settlement latch, and the status
// poller. PaymentData is replaced wholesale on method switch and refresh,
// never partially mutated.
type CheckoutSession struct {
	mu        sync.Mutex
	paymentID string
	createdAt time.Time
	now       func() time.Time

	data       *templates.PaymentData
	expired    bool
	settled    bool
	settledAt  time.Time
	redirected bool

	// switchToken identifies the most recent in-flight method switch so a
	// stale gateway response cannot clobber a newer selection.
	switchToken string

	poller    *StatusPoller
	onSettled func(*templates.PaymentData)
}

// NewCheckoutSession creates a session in the Ready state for loaded data.
func NewCheckoutSession(data *templates.PaymentData) *CheckoutSession {
	return &CheckoutSession{
		paymentID: data.ID,
		createdAt: time.Now(),
		now:       time.Now,
		data:      data,
	}
}

// ID returns the payment-link id the session was created for.
func (s *CheckoutSession) ID() string {
	return s.paymentID
}

// Data returns the current PaymentData.
func (s *CheckoutSession) Data() *templates.PaymentData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// SetSettleHook registers a callback invoked once when the payment settles,
// with the PaymentData active at that moment.
func (s *CheckoutSession) SetSettleHook(fn func(*templates.PaymentData)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSettled = fn
}

// StartPolling starts the background status poller for this session. Any
// previous poller is stopped first so only one instance exists at a time.
func (s *CheckoutSession) StartPolling(ctx context.Context, checker StatusChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startPollingLocked(ctx, checker)
}

func (s *CheckoutSession) startPollingLocked(ctx context.Context, checker StatusChecker) {
	if s.poller != nil {
		s.poller.Stop()
	}
	if s.data == nil || s.data.OrderID == "" {
		return
	}
	s.poller = NewStatusPoller(checker, s.data.OrderID, config.StatusPollInterval, func() {
		s.Settle()
	})
	s.poller.Start(ctx)
}

// StopPolling stops the background poller, if any.
func (s *CheckoutSession) StopPolling() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poller != nil {
		s.poller.Stop()
	}
}

// Settle records a confirmed settlement. The first call wins: it stops the
// poller, stamps the processing start time, and fires the settle hook.
// Repeated settled observations are no-ops so only one redirect can happen.
func (s *CheckoutSession) Settle() bool {
	s.mu.Lock()
	if s.settled {
		s.mu.Unlock()
		return false
	}
	s.settled = true
	s.settledAt = s.now()
	if s.poller != nil {
		s.poller.Stop()
	}
	data := s.data
	hook := s.onSettled
	s.mu.Unlock()

	if hook != nil && data != nil {
		hook(data)
	}
	utils.Info("checkout", "Payment settled, entering processing", "payment_id", s.paymentID)
	return true
}

// Settled reports whether settlement has been confirmed.
func (s *CheckoutSession) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}

// ProcessingState returns the current processing animation step and whether
// the session should now redirect to the success view. The redirect signal
// fires exactly once.
func (s *CheckoutSession) ProcessingState() (ProcessingStep, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.settled {
		return StepSent, false
	}

	elapsed := s.now().Sub(s.settledAt)
	step := StepSent
	switch {
	case elapsed >= config.ReceivedDelay:
		step = StepReceived
	case elapsed >= config.ConfirmingDelay:
		step = StepConfirming
	}

	if step == StepReceived && elapsed >= config.ReceivedDelay+config.RedirectDelay && !s.redirected {
		s.redirected = true
		return step, true
	}
	return step, false
}

// TickCountdown recomputes the countdown for the active method's expiry from
// the wall clock. The justExpired flag is edge-triggered: it fires exactly
// once when the countdown crosses zero, at which point polling stops and the
// expired flag latches until a successful refresh. A settled session never
// expires: once the funds are confirmed the instrument's expiry is moot.
func (s *CheckoutSession) TickCountdown() (timeLeft string, justExpired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return utils.ExpiredTimeLeft, false
	}

	now := s.now()
	expiry := s.data.MethodExpiry()
	timeLeft = utils.TimeLeft(expiry, now)

	if !s.expired && !s.settled && utils.IsExpired(expiry, now) {
		s.expired = true
		justExpired = true
		if s.poller != nil {
			s.poller.Stop()
		}
		utils.Info("checkout", "Payment expired", "payment_id", s.paymentID)
	}
	return timeLeft, justExpired
}

// ShortTimeLeft returns the compact countdown used on the processing view.
func (s *CheckoutSession) ShortTimeLeft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return utils.ExpiredTimeLeftShort
	}
	return utils.TimeLeftShort(s.data.MethodExpiry(), s.now())
}

// Expired reports whether the active method's expiry has passed without a
// refresh since.
func (s *CheckoutSession) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// BeginMethodSwitch starts switching to the target method type. It returns
// a token identifying this switch; a later switch invalidates earlier
// tokens. ok is false when the target equals the current selection or the
// session has already settled.
func (s *CheckoutSession) BeginMethodSwitch(target templates.PaymentMethodType) (token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return "", false
	}
	if s.data != nil && s.data.SelectedMethod != nil && s.data.SelectedMethod.Type == target {
		return "", false
	}
	s.switchToken = uuid.NewString()
	return s.switchToken, true
}

// CompleteMethodSwitch applies the outcome of a method-switch fetch. The
// result is discarded when the token is stale, i.e. a newer switch has since
// started. On failure the previous selection stays in place. On success the
// PaymentData is replaced and the expired flag clears.
func (s *CheckoutSession) CompleteMethodSwitch(token string, data *templates.PaymentData, fetchErr error) (applied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || token != s.switchToken {
		utils.Warn("checkout", "Discarding stale method switch result", "payment_id", s.paymentID)
		return false
	}
	s.switchToken = ""
	if fetchErr != nil || data == nil {
		return false
	}
	s.data = data
	s.expired = false
	return true
}

// ApplyRefresh replaces the PaymentData after a successful refresh of an
// expired payment and clears the expired flag.
func (s *CheckoutSession) ApplyRefresh(ctx context.Context, checker StatusChecker, data *templates.PaymentData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.expired = false
	// Expiry stopped the poller; a fresh instrument needs it running again
	s.startPollingLocked(ctx, checker)
}

// Age reports how long ago the session was created.
func (s *CheckoutSession) Age() time.Duration {
	return time.Since(s.createdAt)
}

// Close releases the session's resources. Idempotent.
func (s *CheckoutSession) Close() {
	s.StopPolling()
}

// SessionManager tracks live checkout sessions keyed by payment-link id.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*CheckoutSession
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*CheckoutSession)}
}

// Put registers a session, closing any previous session for the same id so
// its timers cannot mutate state behind the new one.
func (m *SessionManager) Put(s *CheckoutSession) {
	m.mu.Lock()
	prev := m.sessions[s.ID()]
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

// Get retrieves a session by payment-link id.
func (m *SessionManager) Get(id string) (*CheckoutSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove drops a session and stops its timers.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

// CleanupStale closes and removes sessions older than ttl. Returns how many
// were removed.
func (m *SessionManager) CleanupStale(ttl time.Duration) int {
	m.mu.Lock()
	var stale []*CheckoutSession
	for id, s := range m.sessions {
		if s.Age() > ttl {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// ActiveCount returns the number of live sessions.
func (m *SessionManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
