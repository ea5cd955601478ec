package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/lull/internal/storage"
)

type staticNames []string

func (s staticNames) Names() ([]storage.Reservation, error) {
	out := make([]storage.Reservation, 0, len(s))
	for _, n := range s {
		out = append(out, storage.Reservation{Name: n})
	}
	return out, nil
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, tokenize("Hello, World! 42"))
	assert.Empty(t, tokenize("  --  "))
	assert.Equal(t, []string{"a"}, tokenize("a"))
}

func TestWithinOneEdit(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"alice", "alice", true},
		{"alice", "alise", true},
		{"alice", "alic", true},
		{"alice", "alxice", true},
		{"alice", "bob", false},
		{"alice", "elise", false},
		{"", "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, withinOneEdit(tt.a, tt.b))
			assert.Equal(t, tt.want, withinOneEdit(tt.b, tt.a))
		})
	}
}

func TestEngineMatch(t *testing.T) {
	e := NewEngine(staticNames{"alice", "alicia keys", "bob", "carol"})

	hits, err := e.Match("alice", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "alice", hits[0].Name)

	hits, err = e.Match("ali", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = e.Match("bobb", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "bob", hits[0].Name)

	hits, err = e.Match("zzz", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = e.Match("   ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngineMatchLimit(t *testing.T) {
	e := NewEngine(staticNames{"ann", "anna", "annie"})

	hits, err := e.Match("ann", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, "ann", hits[0].Name)
}
