package operation

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
)

// Random waits Delay and then succeeds with probability 1-Threshold.
type Random struct {
	Delay     time.Duration
	Threshold float64
	Clock     clockwork.Clock
	// Float64 draws the roll; rand.Float64 when nil.
	Float64 func() float64
}

func (r *Random) Run(ctx context.Context, _ string) (bool, error) {
	if r.Delay > 0 {
		clock := r.Clock
		if clock == nil {
			clock = clockwork.NewRealClock()
		}
		t := clock.NewTimer(r.Delay)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return false, context.Cause(ctx)
		case <-t.Chan():
		}
	}

	roll := rand.Float64
	if r.Float64 != nil {
		roll = r.Float64
	}
	return roll() > r.Threshold, nil
}
