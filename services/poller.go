package services

import (
	"context"
	"sync"
	"time"

	"linkpay/templates"
	"linkpay/utils"
)

// StatusChecker is the slice of the backend client the poller needs.
type StatusChecker interface {
	CheckStatus(ctx context.Context, orderID string) (templates.PaymentStatus, error)
}

// StatusPoller repeatedly checks an order's payment status until the backend
// confirms settlement or the poller is stopped. It is a cancellable task
// handle: exactly one poller runs per checkout session, and replacing it
// (after a method switch or refresh) must stop the previous instance first.
type StatusPoller struct {
	checker  StatusChecker
	orderID  string
	interval time.Duration

	// onSettled fires at most once, on the first settled status observed.
	onSettled func()

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewStatusPoller creates a poller for the given order. It does not start
// polling until Start is called.
func NewStatusPoller(checker StatusChecker, orderID string, interval time.Duration, onSettled func()) *StatusPoller {
	return &StatusPoller{
		checker:   checker,
		orderID:   orderID,
		interval:  interval,
		onSettled: onSettled,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the polling loop. The loop ends when the context is
// cancelled, Stop is called, or a settled status is observed.
func (p *StatusPoller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Stop cancels the poller. Safe to call multiple times and from the
// settlement callback.
func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

// Done is closed once the polling loop has fully exited.
func (p *StatusPoller) Done() <-chan struct{} {
	return p.done
}

func (p *StatusPoller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if p.poll(ctx) {
				return
			}
		}
	}
}

// poll performs one status check. It returns true when polling should stop,
// which only happens on a confirmed settlement: errors are swallowed so a
// flaky backend never kills the loop, and terminal failure states are
// surfaced in logs but keep the timer alive for the UI to handle later.
func (p *StatusPoller) poll(ctx context.Context) bool {
	status, err := p.checker.CheckStatus(ctx, p.orderID)
	if err != nil {
		utils.Warn("poller", "Status check failed, will retry", "order_id", p.orderID, "error", err)
		return false
	}

	switch {
	case status.IsSettled():
		utils.Info("poller", "Payment settled", "order_id", p.orderID, "status", string(status))
		p.Stop()
		if p.onSettled != nil {
			p.onSettled()
		}
		return true
	case status == templates.StatusFailed:
		utils.Error("poller", "Backend reports payment failed", "order_id", p.orderID)
	case status == templates.StatusExpired, status == templates.StatusCancelled:
		utils.Warn("poller", "Backend reports terminal status", "order_id", p.orderID, "status", string(status))
	default:
		utils.Debug("poller", "Payment still pending", "order_id", p.orderID)
	}
	return false
}
