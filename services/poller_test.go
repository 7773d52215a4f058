package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"linkpay/templates"
)

// scriptedChecker returns a fixed sequence of status results, repeating the
// last entry once the script runs out.
type scriptedChecker struct {
	mu     sync.Mutex
	script []statusResult
	calls  int
}

type statusResult struct {
	status templates.PaymentStatus
	err    error
}

func (c *scriptedChecker) CheckStatus(ctx context.Context, orderID string) (templates.PaymentStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls
	c.calls++
	if i >= len(c.script) {
		i = len(c.script) - 1
	}
	return c.script[i].status, c.script[i].err
}

func (c *scriptedChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func waitDone(t *testing.T, p *StatusPoller) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not finish in time")
	}
}

func TestPollerStopsOnSettled(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{
		{status: templates.StatusPending},
		{status: templates.StatusPending},
		{status: templates.StatusSuccess},
	}}

	var mu sync.Mutex
	settleCount := 0
	p := NewStatusPoller(checker, "order_1", 5*time.Millisecond, func() {
		mu.Lock()
		settleCount++
		mu.Unlock()
	})
	p.Start(context.Background())
	waitDone(t, p)

	mu.Lock()
	defer mu.Unlock()
	if settleCount != 1 {
		t.Errorf("settle callback fired %d times, want 1", settleCount)
	}
	if got := checker.callCount(); got != 3 {
		t.Errorf("status checked %d times, want 3", got)
	}
}

func TestPollerRetriesAfterErrors(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{
		{status: templates.StatusPending, err: errors.New("connection refused")},
		{status: templates.StatusPending},
		{status: templates.StatusSettled},
	}}

	settled := make(chan struct{})
	p := NewStatusPoller(checker, "order_1", 5*time.Millisecond, func() {
		close(settled)
	})
	p.Start(context.Background())

	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never settled despite a later success")
	}
	waitDone(t, p)
}

func TestPollerKeepsGoingThroughTerminalFailures(t *testing.T) {
	// FAILED and EXPIRED from the backend are logged but do not stop the
	// loop; the UI owns those transitions.
	checker := &scriptedChecker{script: []statusResult{
		{status: templates.StatusFailed},
		{status: templates.StatusExpired},
		{status: templates.StatusSuccess},
	}}

	p := NewStatusPoller(checker, "order_1", 5*time.Millisecond, nil)
	p.Start(context.Background())
	waitDone(t, p)

	if got := checker.callCount(); got != 3 {
		t.Errorf("status checked %d times, want 3", got)
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{{status: templates.StatusPending}}}

	settled := false
	p := NewStatusPoller(checker, "order_1", time.Hour, func() { settled = true })
	p.Start(context.Background())

	p.Stop()
	p.Stop()
	waitDone(t, p)

	if settled {
		t.Error("settle callback fired on a stopped poller")
	}
}

func TestPollerHonorsContextCancellation(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{{status: templates.StatusPending}}}

	ctx, cancel := context.WithCancel(context.Background())
	p := NewStatusPoller(checker, "order_1", time.Hour, nil)
	p.Start(ctx)

	cancel()
	waitDone(t, p)
}
