package search

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Engine matches names by scanning the registry. It needs no index and is
// used when the bleve index cannot be opened.
type Engine struct {
	source NameSource
}

func NewEngine(source NameSource) *Engine {
	return &Engine{source: source}
}

// Match scores every registered name against query and returns the best
// hits, highest score first.
func (e *Engine) Match(query string, limit int) ([]Hit, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return []Hit{}, nil
	}

	names, err := e.source.Names()
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for _, n := range names {
		if score := scoreName(n.Name, terms); score > 0 {
			hits = append(hits, Hit{Name: n.Name, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// scoreName rates name against the query terms. Exact words score highest,
// then prefixes, then words one edit away.
func scoreName(name string, terms []string) float64 {
	words := tokenize(name)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matched := 0
	for _, term := range terms {
		best := 0.0
		for _, word := range words {
			switch {
			case word == term:
				best = math.Max(best, 2.0)
			case strings.HasPrefix(word, term):
				best = math.Max(best, 1.5)
			case withinOneEdit(word, term):
				best = math.Max(best, 1.0)
			}
		}
		if best > 0 {
			matched++
			score += best
		}
	}

	if len(terms) > 1 && matched > 1 {
		score *= 1.0 + float64(matched)/float64(len(terms))
	}
	return score
}

// withinOneEdit reports whether a and b differ by at most one insertion,
// deletion or substitution.
func withinOneEdit(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(ra)-len(rb) > 1 {
		return false
	}

	i, j, edits := 0, 0, 0
	for i < len(ra) && j < len(rb) {
		if ra[i] == rb[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(ra) == len(rb) {
			j++
		}
		i++
	}
	return edits+(len(ra)-i) <= 1
}

// tokenize lower-cases text and splits it on anything that is not a letter
// or digit.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			terms = append(terms, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		terms = append(terms, current.String())
	}

	return terms
}
