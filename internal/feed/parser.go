package feed

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Summary is what the probe needs to know about a parsed feed.
type Summary struct {
	Title     string
	FeedType  string
	ItemCount int
}

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
	}
}

// Parse detects the feed format (RSS, Atom or JSON) and summarizes it.
func (p *Parser) Parse(reader io.Reader) (*Summary, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	return &Summary{
		Title:     strings.TrimSpace(feed.Title),
		FeedType:  feed.FeedType,
		ItemCount: len(feed.Items),
	}, nil
}
