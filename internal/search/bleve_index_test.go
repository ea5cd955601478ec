package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, names ...string) *Index {
	t.Helper()
	idx, err := NewMemIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.Reindex(staticNames(names)))
	return idx
}

func hitNames(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Name)
	}
	return out
}

func TestIndexMatch(t *testing.T) {
	idx := newTestIndex(t, "alice", "bob", "carol")

	tests := []struct {
		query string
		want  []string
	}{
		{"alice", []string{"alice"}},
		{"ALICE", []string{"alice"}},
		{"ali", []string{"alice"}},
		{"alise", []string{"alice"}},
		{"carl", []string{"carol"}},
		{"zed", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			hits, err := idx.Match(tt.query, 10)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, hitNames(hits))
		})
	}
}

func TestIndexAddRemove(t *testing.T) {
	idx := newTestIndex(t)

	require.NoError(t, idx.Add(" Dave "))
	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := idx.Match("dave", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"dave"}, hitNames(hits))

	require.NoError(t, idx.Remove("DAVE"))
	hits, err = idx.Match("dave", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexReindexDropsStaleNames(t *testing.T) {
	idx := newTestIndex(t, "erin", "frank")

	require.NoError(t, idx.Reindex(staticNames{"frank", "grace"}))

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err := idx.Match("erin", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestOpenIndexOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "index.bleve")

	idx, err := OpenIndex(path)
	require.NoError(t, err)
	require.NoError(t, idx.Add("heidi"))
	require.NoError(t, idx.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	idx, err = OpenIndex(path)
	require.NoError(t, err)
	defer idx.Close()

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
