package search

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/pders01/lull/internal/storage"
)

const nameField = "name"

// Index is a bleve full-text index over registered names.
type Index struct {
	idx bleve.Index
}

// OpenIndex opens the index at indexPath, creating it if needed.
func OpenIndex(indexPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}
	return &Index{idx: idx}, nil
}

// NewMemIndex returns an index that lives only in memory.
func NewMemIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	name := bleve.NewTextFieldMapping()
	name.Analyzer = standard.Name
	name.Store = true
	dm.AddFieldMappingsAt(nameField, name)

	im.DefaultMapping = dm
	return im
}

func (i *Index) Close() error {
	return i.idx.Close()
}

// Reindex replaces the index contents with the names in source.
func (i *Index) Reindex(source NameSource) error {
	names, err := source.Names()
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(names))
	batch := i.idx.NewBatch()
	for _, n := range names {
		keep[n.Name] = struct{}{}
		if err := batch.Index(n.Name, map[string]any{nameField: n.Name}); err != nil {
			return err
		}
	}

	existing, err := i.allIDs()
	if err != nil {
		return err
	}
	for _, id := range existing {
		if _, ok := keep[id]; !ok {
			batch.Delete(id)
		}
	}
	return i.idx.Batch(batch)
}

func (i *Index) allIDs() ([]string, error) {
	count, err := i.idx.DocCount()
	if err != nil || count == 0 {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func (i *Index) Add(name string) error {
	key := storage.NormalizeName(name)
	if key == "" {
		return nil
	}
	return i.idx.Index(key, map[string]any{nameField: key})
}

func (i *Index) Remove(name string) error {
	return i.idx.Delete(storage.NormalizeName(name))
}

// OnReserved keeps the index in step with the registry.
func (i *Index) OnReserved(name string) error { return i.Add(name) }

func (i *Index) OnReleased(name string) error { return i.Remove(name) }

// Match returns names that match any query term exactly, by prefix, or
// within one edit.
func (i *Index) Match(query string, limit int) ([]Hit, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var qs []bleveQuery.Query
	for _, term := range terms {
		qm := bleve.NewMatchQuery(term)
		qm.SetField(nameField)
		qm.SetBoost(2.0)
		qs = append(qs, qm)

		qp := bleve.NewPrefixQuery(term)
		qp.SetField(nameField)
		qp.SetBoost(1.5)
		qs = append(qs, qp)

		qf := bleve.NewFuzzyQuery(term)
		qf.SetField(nameField)
		qf.SetFuzziness(1)
		qs = append(qs, qf)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := i.idx.Search(req)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{Name: h.ID, Score: h.Score})
	}
	return hits, nil
}

// DocCount reports the number of indexed names.
func (i *Index) DocCount() (int, error) {
	n, err := i.idx.DocCount()
	return int(n), err
}
