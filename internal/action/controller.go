// Package action turns a stream of rapidly changing input into a single,
// debounced run of an asynchronous Operation and reports progress as a
// four-state Status.
package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pders01/lull/internal/debuglog"
	"github.com/pders01/lull/internal/pubsub"
)

var (
	ErrInvalidConfig     = errors.New("invalid controller configuration")
	ErrOperationPanicked = errors.New("operation panicked")
	errClosed            = errors.New("controller closed")
)

// pendingInvocation is a scheduled run that has not fired yet.
type pendingInvocation struct {
	scheduledAt time.Time
	input       string
	gen         uint64
	handle      clockwork.Timer
	canceled    bool
}

// Controller debounces Submit calls into runs of an Operation.
//
// The synchronous part of Submit and every status write happen under one
// mutex, so observers see transitions in the order they were made. The
// operation itself runs without the lock; Submit keeps working while it is in
// flight.
type Controller struct {
	op         Operation
	clock      clockwork.Clock
	debounce   time.Duration
	resetDelay time.Duration
	staleGuard bool
	log        *debuglog.FieldLogger

	ctx    context.Context
	cancel context.CancelCauseFunc
	broker *pubsub.Broker[Status]

	mu      sync.Mutex
	status  Status
	pending *pendingInvocation
	gen     uint64
	resets  map[clockwork.Timer]struct{}
	closed  bool
}

// New returns a Controller in the neutral state.
func New(op Operation, opts ...Option) (*Controller, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if op == nil {
		return nil, fmt.Errorf("%w: operation is required", ErrInvalidConfig)
	}
	if o.debounce <= 0 {
		return nil, fmt.Errorf("%w: debounce must be positive, got %s", ErrInvalidConfig, o.debounce)
	}
	if o.resetDelay <= 0 {
		return nil, fmt.Errorf("%w: reset delay must be positive, got %s", ErrInvalidConfig, o.resetDelay)
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	return &Controller{
		op:         op,
		clock:      o.clock,
		debounce:   o.debounce,
		resetDelay: o.resetDelay,
		staleGuard: o.staleGuard,
		log:        o.logger,
		ctx:        ctx,
		cancel:     cancel,
		broker:     pubsub.NewBroker[Status](),
		status:     neutral(),
		resets:     make(map[clockwork.Timer]struct{}),
	}, nil
}

// Debounce returns the configured debounce interval.
func (c *Controller) Debounce() time.Duration { return c.debounce }

// Status returns the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe delivers every subsequent status change. The channel is closed
// when ctx is done or the controller is closed. Slow subscribers miss
// updates rather than stall the controller; Status stays authoritative.
func (c *Controller) Subscribe(ctx context.Context) <-chan pubsub.Event[Status] {
	return c.broker.Subscribe(ctx)
}

// Submit records a new input. A pending run that has not reached its
// deadline is canceled; a run that already fired is left alone. Empty input
// resets to neutral, anything else schedules a run after the debounce
// interval.
func (c *Controller) Submit(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	now := c.clock.Now()
	c.gen++

	if c.cancelIfPresent(now) {
		c.setStatus(canceling())
	}

	if input == "" {
		c.setStatus(neutral())
		return
	}

	inv := &pendingInvocation{scheduledAt: now, input: input, gen: c.gen}
	inv.handle = c.clock.AfterFunc(c.debounce, func() { c.fire(inv) })
	c.pending = inv
	c.log.With("input", input).Debugf("scheduled in %s", c.debounce)
}

// Close stops all timers, cancels the context of an in-flight operation and
// closes subscriptions. The last status is kept; later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.pending != nil {
		c.pending.canceled = true
		c.pending.handle.Stop()
		c.pending = nil
	}
	for t := range c.resets {
		t.Stop()
		delete(c.resets, t)
	}
	c.mu.Unlock()

	c.cancel(errClosed)
	c.broker.Shutdown()
}

// cancelIfPresent cancels the pending invocation if its deadline has not
// passed. Callers must hold c.mu.
func (c *Controller) cancelIfPresent(now time.Time) bool {
	inv := c.pending
	if inv == nil {
		return false
	}
	if !now.Before(inv.scheduledAt.Add(c.debounce)) {
		// Already due; its callback owns it now.
		return false
	}

	inv.canceled = true
	inv.handle.Stop()
	c.pending = nil
	c.log.With("input", inv.input).Infof("superseded before firing")
	return true
}

func (c *Controller) fire(inv *pendingInvocation) {
	c.mu.Lock()
	if c.closed || inv.canceled {
		c.mu.Unlock()
		return
	}
	if c.pending == inv {
		c.pending = nil
	}
	c.setStatus(processing(inv.input))
	c.mu.Unlock()

	result, err := c.run(inv.input)

	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.With("input", inv.input)
	if c.closed {
		return
	}
	if c.staleGuard && inv.gen != c.gen {
		log.Infof("discarding stale settlement (result=%t err=%v)", result, err)
		return
	}

	if err != nil {
		log.Errorf("operation failed: %v", err)
		c.setStatus(failed(inv.input, err))
		return
	}

	log.Infof("operation settled: %t", result)
	c.setStatus(done(inv.input, result))
	if result {
		c.scheduleReset(inv.gen)
	}
}

// run invokes the operation, turning a panic into an error.
func (c *Controller) run(input string) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = false, fmt.Errorf("%w: %v", ErrOperationPanicked, r)
		}
	}()
	return c.op.Run(c.ctx, input)
}

// scheduleReset arranges the return to neutral after a successful run.
// Submit does not cancel it. Callers must hold c.mu.
func (c *Controller) scheduleReset(gen uint64) {
	var t clockwork.Timer
	t = c.clock.AfterFunc(c.resetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(c.resets, t)
		if c.closed {
			return
		}
		if c.staleGuard && gen != c.gen {
			return
		}
		c.setStatus(neutral())
	})
	c.resets[t] = struct{}{}
}

// setStatus stores and publishes s. Callers must hold c.mu.
func (c *Controller) setStatus(s Status) {
	c.status = s
	c.broker.Publish(pubsub.UpdatedEvent, s)
	c.log.Debugf("status -> %s", s)
}
