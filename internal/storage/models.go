package storage

import (
	"strings"
	"time"
)

// Reservation is a name held in the registry.
type Reservation struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeName is the key form of a name: trimmed and lower-cased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
