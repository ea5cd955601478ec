package search

import "github.com/pders01/lull/internal/storage"

// Matcher is the lookup used by the match operation.
type Matcher interface {
	Match(query string, limit int) ([]Hit, error)
}

// NameSource lists the names to search. *storage.Store implements it.
type NameSource interface {
	Names() ([]storage.Reservation, error)
}

// UpdateListener is implemented by matchers that keep their own index and
// need to hear about registry changes.
type UpdateListener interface {
	OnReserved(name string) error
	OnReleased(name string) error
}

// DebugStatser reports index size for status output.
type DebugStatser interface {
	DocCount() (int, error)
}

// Hit is a single matched name.
type Hit struct {
	Name  string
	Score float64
}
