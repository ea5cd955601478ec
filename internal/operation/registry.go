package operation

import (
	"context"

	"github.com/pders01/lull/internal/search"
)

// Registry is the part of the name store the availability check needs.
type Registry interface {
	IsReserved(name string) (bool, error)
}

// Availability succeeds when the input name is not reserved.
type Availability struct {
	Registry Registry
}

func (a *Availability) Run(ctx context.Context, input string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	reserved, err := a.Registry.IsReserved(input)
	if err != nil {
		return false, err
	}
	return !reserved, nil
}

// Match succeeds when the input matches at least one reserved name.
type Match struct {
	Matcher search.Matcher
	Limit   int
}

func (m *Match) Run(ctx context.Context, input string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	hits, err := m.Matcher.Match(input, m.Limit)
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}
