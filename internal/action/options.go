package action

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pders01/lull/internal/debuglog"
)

const (
	DefaultDebounce   = 2 * time.Second
	DefaultResetDelay = 1 * time.Second
)

type options struct {
	debounce   time.Duration
	resetDelay time.Duration
	clock      clockwork.Clock
	staleGuard bool
	logger     *debuglog.FieldLogger
}

func defaultOptions() options {
	return options{
		debounce:   DefaultDebounce,
		resetDelay: DefaultResetDelay,
		clock:      clockwork.NewRealClock(),
		logger:     debuglog.WithFields(map[string]any{"component": "action"}),
	}
}

// Option configures a Controller.
type Option func(*options)

// WithDebounce sets the quiet period after the last input before the
// operation runs.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithResetDelay sets how long a successful done status is shown before
// returning to neutral.
func WithResetDelay(d time.Duration) Option {
	return func(o *options) { o.resetDelay = d }
}

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithStaleGuard makes settlements and resets from an invocation no-ops once
// newer input has been submitted. Without it the last write wins, even if it
// comes from a superseded invocation.
func WithStaleGuard(enabled bool) Option {
	return func(o *options) { o.staleGuard = enabled }
}

func WithLogger(l *debuglog.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
