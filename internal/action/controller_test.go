package action

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/lull/internal/pubsub"
)

const (
	testDebounce = 1500 * time.Millisecond
	waitFor      = 2 * time.Second
	tick         = 2 * time.Millisecond
)

type fakeClock interface {
	clockwork.Clock
	Advance(time.Duration)
}

type outcome struct {
	ok  bool
	err error
}

// stubOperation records inputs and blocks each run until the test sends an
// outcome.
type stubOperation struct {
	mu       sync.Mutex
	inputs   []string
	outcomes chan outcome
}

func newStubOperation() *stubOperation {
	return &stubOperation{outcomes: make(chan outcome, 8)}
}

func (s *stubOperation) Run(ctx context.Context, input string) (bool, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()

	select {
	case o := <-s.outcomes:
		return o.ok, o.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *stubOperation) Inputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inputs...)
}

func (s *stubOperation) settle(ok bool)      { s.outcomes <- outcome{ok: ok} }
func (s *stubOperation) settleErr(err error) { s.outcomes <- outcome{err: err} }
func (s *stubOperation) callCount() int      { return len(s.Inputs()) }

func (s *stubOperation) called(n int) func() bool {
	return func() bool { return s.callCount() == n }
}

func newTestController(t *testing.T, op Operation, opts ...Option) (*Controller, fakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	opts = append([]Option{WithDebounce(testDebounce), WithClock(clock)}, opts...)
	c, err := New(op, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, clock
}

func waitMode(t *testing.T, c *Controller, mode Mode) Status {
	t.Helper()
	require.Eventually(t, func() bool { return c.Status().Mode == mode }, waitFor, tick,
		"controller never reached %s (last: %s)", mode, c.Status())
	return c.Status()
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	op := OperationFunc(func(context.Context, string) (bool, error) { return true, nil })

	tests := []struct {
		name string
		op   Operation
		opts []Option
	}{
		{name: "nil operation", op: nil},
		{name: "zero debounce", op: op, opts: []Option{WithDebounce(0)}},
		{name: "negative debounce", op: op, opts: []Option{WithDebounce(-time.Second)}},
		{name: "zero reset delay", op: op, opts: []Option{WithResetDelay(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.op, tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Nil(t, c)
		})
	}
}

func TestInitialStatusIsNeutral(t *testing.T) {
	c, _ := newTestController(t, newStubOperation())
	assert.Equal(t, ModeNeutral, c.Status().Mode)
	assert.Equal(t, testDebounce, c.Debounce())
}

func TestSupersededInputScenario(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	c.Submit("a")
	assert.Equal(t, ModeNeutral, c.Status().Mode, "first input shows nothing until it fires")

	clock.Advance(500 * time.Millisecond)
	c.Submit("ab")
	assert.Equal(t, ModeCanceling, c.Status().Mode)

	// t=1999: still waiting on "ab".
	clock.Advance(1499 * time.Millisecond)
	assert.Equal(t, ModeCanceling, c.Status().Mode)
	assert.Empty(t, op.Inputs())

	// t=2000: "ab" fires.
	clock.Advance(time.Millisecond)
	st := waitMode(t, c, ModeProcessing)
	assert.Equal(t, "ab", st.Input)
	require.Eventually(t, op.called(1), waitFor, tick)
	assert.Equal(t, []string{"ab"}, op.Inputs())

	// t=3000: the operation resolves true.
	clock.Advance(time.Second)
	op.settle(true)
	st = waitMode(t, c, ModeDone)
	require.NotNil(t, st.Result)
	assert.True(t, *st.Result)
	assert.NoError(t, st.Err)
	assert.True(t, st.Succeeded())

	// t=3999 still done, t=4000 back to neutral.
	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, ModeDone, c.Status().Mode)
	clock.Advance(time.Millisecond)
	waitMode(t, c, ModeNeutral)

	assert.Equal(t, []string{"ab"}, op.Inputs(), "the superseded input never runs")
}

func TestFalseResultPersists(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)

	clock.Advance(time.Second)
	op.settle(false)
	st := waitMode(t, c, ModeDone)
	require.NotNil(t, st.Result)
	assert.False(t, *st.Result)
	assert.True(t, st.Failed())

	clock.Advance(10 * time.Second)
	assert.Never(t, func() bool { return c.Status().Mode != ModeDone }, 50*time.Millisecond, tick)
}

func TestEmptyInputCancelsPending(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	c.Submit("x")
	clock.Advance(time.Second)
	c.Submit("")
	assert.Equal(t, ModeNeutral, c.Status().Mode)

	clock.Advance(10 * time.Second)
	assert.Never(t, func() bool { return op.callCount() > 0 }, 50*time.Millisecond, tick)
	assert.Equal(t, ModeNeutral, c.Status().Mode)
}

func TestEmptyInputResetsFromDone(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)
	op.settle(false)
	waitMode(t, c, ModeDone)

	c.Submit("")
	assert.Equal(t, ModeNeutral, c.Status().Mode)
	assert.Nil(t, c.Status().Result)
}

func TestBurstCoalescesToLastInput(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []string
		spacing time.Duration
	}{
		{name: "typing", inputs: []string{"h", "he", "hel", "hell", "hello"}, spacing: 100 * time.Millisecond},
		{name: "just under the window", inputs: []string{"a", "b", "c"}, spacing: testDebounce - time.Millisecond},
		{name: "same instant", inputs: []string{"x", "y"}, spacing: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := newStubOperation()
			c, clock := newTestController(t, op)

			for i, in := range tt.inputs {
				if i > 0 {
					clock.Advance(tt.spacing)
				}
				c.Submit(in)
				if i > 0 {
					assert.Equal(t, ModeCanceling, c.Status().Mode, "input %q", in)
				}
			}

			clock.Advance(testDebounce)
			waitMode(t, c, ModeProcessing)
			require.Eventually(t, op.called(1), waitFor, tick)

			last := tt.inputs[len(tt.inputs)-1]
			assert.Equal(t, []string{last}, op.Inputs())
			assert.Equal(t, last, c.Status().Input)
		})
	}
}

func TestInputAfterDeadlineDoesNotCancel(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)

	c.Submit("y")
	assert.Equal(t, ModeProcessing, c.Status().Mode, "an in-flight run is not canceled")

	clock.Advance(testDebounce)
	require.Eventually(t, op.called(2), waitFor, tick)
	assert.Equal(t, []string{"x", "y"}, op.Inputs())

	op.settle(true)
	op.settle(true)
}

func TestStaleSettlementWinsByDefault(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)

	// Newer input arrives while "x" is in flight; "x" still writes done.
	c.Submit("y")
	op.settle(true)
	st := waitMode(t, c, ModeDone)
	assert.Equal(t, "x", st.Input)
}

func TestStaleGuardDiscardsSupersededSettlement(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op, WithStaleGuard(true))

	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)

	c.Submit("y")
	op.settle(true)
	assert.Never(t, func() bool { return c.Status().Mode == ModeDone }, 100*time.Millisecond, tick)

	clock.Advance(testDebounce)
	require.Eventually(t, op.called(2), waitFor, tick)
	op.settle(false)

	st := waitMode(t, c, ModeDone)
	assert.Equal(t, "y", st.Input)
	require.NotNil(t, st.Result)
	assert.False(t, *st.Result)
}

func TestStaleGuardSkipsResetAfterNewInput(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op, WithStaleGuard(true))

	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)
	op.settle(true)
	waitMode(t, c, ModeDone)

	c.Submit("y")
	clock.Advance(DefaultResetDelay)
	assert.Never(t, func() bool { return c.Status().Mode == ModeNeutral }, 100*time.Millisecond, tick)
}

func TestResetIsNotCanceledByNewInput(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)
	op.settle(true)
	waitMode(t, c, ModeDone)

	c.Submit("y")
	clock.Advance(DefaultResetDelay)
	waitMode(t, c, ModeNeutral)

	// "y" is still pending and fires on its own deadline.
	clock.Advance(testDebounce - DefaultResetDelay)
	st := waitMode(t, c, ModeProcessing)
	assert.Equal(t, "y", st.Input)
	op.settle(false)
}

func TestCustomResetDelay(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op, WithResetDelay(300*time.Millisecond))

	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)
	op.settle(true)
	waitMode(t, c, ModeDone)

	clock.Advance(300 * time.Millisecond)
	waitMode(t, c, ModeNeutral)
}

func TestOperationFailure(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	boom := errors.New("boom")
	c.Submit("x")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)
	op.settleErr(boom)

	st := waitMode(t, c, ModeDone)
	assert.ErrorIs(t, st.Err, boom)
	assert.Nil(t, st.Result, "result is absent when the operation failed")
	assert.True(t, st.Failed())
	assert.Contains(t, st.String(), "boom")

	clock.Advance(10 * time.Second)
	assert.Equal(t, ModeDone, c.Status().Mode, "failures do not auto-reset")

	// A new input restarts the sequence.
	c.Submit("again")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)
	op.settle(true)
	assert.True(t, waitMode(t, c, ModeDone).Succeeded())
}

func TestOperationPanicIsRecovered(t *testing.T) {
	op := OperationFunc(func(context.Context, string) (bool, error) {
		panic("kaboom")
	})
	c, clock := newTestController(t, op)

	c.Submit("x")
	clock.Advance(testDebounce)

	st := waitMode(t, c, ModeDone)
	assert.ErrorIs(t, st.Err, ErrOperationPanicked)
	assert.Contains(t, st.Err.Error(), "kaboom")
}

func TestSubscribeObservesTransitionsInOrder(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	events := c.Subscribe(ctx)

	c.Submit("a")
	c.Submit("ab")
	clock.Advance(testDebounce)
	waitMode(t, c, ModeProcessing)
	op.settle(true)
	waitMode(t, c, ModeDone)
	clock.Advance(DefaultResetDelay)
	waitMode(t, c, ModeNeutral)

	var modes []Mode
	for len(modes) < 4 {
		select {
		case ev := <-events:
			assert.Equal(t, pubsub.UpdatedEvent, ev.Type)
			modes = append(modes, ev.Payload.Mode)
		case <-time.After(waitFor):
			t.Fatalf("timed out, got %v", modes)
		}
	}
	assert.Equal(t, []Mode{ModeCanceling, ModeProcessing, ModeDone, ModeNeutral}, modes)
}

func TestCloseStopsEverything(t *testing.T) {
	op := newStubOperation()
	c, clock := newTestController(t, op)

	events := c.Subscribe(context.Background())

	c.Submit("x")
	c.Close()
	c.Close()

	clock.Advance(10 * time.Second)
	assert.Never(t, func() bool { return op.callCount() > 0 }, 50*time.Millisecond, tick)

	c.Submit("y")
	assert.Equal(t, ModeNeutral, c.Status().Mode)

	_, ok := <-events
	assert.False(t, ok, "subscriptions close with the controller")
}

func TestCloseCancelsInFlightOperation(t *testing.T) {
	started := make(chan struct{})
	returned := make(chan error, 1)
	op := OperationFunc(func(ctx context.Context, _ string) (bool, error) {
		close(started)
		<-ctx.Done()
		returned <- ctx.Err()
		return false, ctx.Err()
	})
	c, clock := newTestController(t, op)

	c.Submit("x")
	clock.Advance(testDebounce)
	<-started

	c.Close()
	select {
	case err := <-returned:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("operation did not observe cancellation")
	}
	assert.Never(t, func() bool { return c.Status().Mode == ModeDone }, 50*time.Millisecond, tick)
}

func TestRealClock(t *testing.T) {
	var mu sync.Mutex
	var got []string
	op := OperationFunc(func(_ context.Context, input string) (bool, error) {
		mu.Lock()
		got = append(got, input)
		mu.Unlock()
		return true, nil
	})

	c, err := New(op, WithDebounce(50*time.Millisecond), WithResetDelay(200*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	c.Submit("l")
	c.Submit("lu")
	c.Submit("lull")

	require.Eventually(t, func() bool { return c.Status().Succeeded() }, waitFor, tick)
	require.Eventually(t, func() bool { return c.Status().Mode == ModeNeutral }, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"lull"}, got)
}
