// Package operation provides the asynchronous checks an action.Controller
// can run against debounced input.
package operation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/pders01/lull/internal/action"
	"github.com/pders01/lull/internal/config"
	"github.com/pders01/lull/internal/feed"
	"github.com/pders01/lull/internal/search"
	"github.com/pders01/lull/internal/validation"
)

const (
	KindRandom    = "random"
	KindFeed      = "feed"
	KindAvailable = "available"
	KindMatch     = "match"
)

var (
	ErrUnknownKind       = errors.New("unknown operation")
	ErrMissingDependency = errors.New("missing dependency")
)

var (
	_ action.Operation = (*Random)(nil)
	_ action.Operation = (*FeedProbe)(nil)
	_ action.Operation = (*Availability)(nil)
	_ action.Operation = (*Match)(nil)
)

// Deps carries what the operations need. Only the fields used by the
// requested kind must be set.
type Deps struct {
	Clock    clockwork.Clock
	Random   config.RandomConfig
	Feed     config.FeedConfig
	Registry Registry
	Matcher  search.Matcher
}

// New builds the operation registered under kind.
func New(kind string, deps Deps) (action.Operation, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindRandom:
		return &Random{
			Delay:     deps.Random.Delay,
			Threshold: deps.Random.Threshold,
			Clock:     deps.Clock,
		}, nil
	case KindFeed:
		return NewFeedProbe(
			validation.NewFeedURLValidator(deps.Feed.AllowLocalhost),
			feed.NewFetcher(deps.Feed.HTTPTimeout, deps.Feed.UserAgent),
		), nil
	case KindAvailable:
		if deps.Registry == nil {
			return nil, fmt.Errorf("%s: %w: name registry", kind, ErrMissingDependency)
		}
		return &Availability{Registry: deps.Registry}, nil
	case KindMatch:
		if deps.Matcher == nil {
			return nil, fmt.Errorf("%s: %w: search index", kind, ErrMissingDependency)
		}
		return &Match{Matcher: deps.Matcher, Limit: 1}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NeedsStore reports whether kind reads the name registry or index.
func NeedsStore(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindAvailable, KindMatch:
		return true
	}
	return false
}
