package operation

import (
	"context"
	"errors"

	"github.com/pders01/lull/internal/debuglog"
	"github.com/pders01/lull/internal/feed"
	"github.com/pders01/lull/internal/validation"
)

// FeedProbe reports whether the input points at a feed with at least one
// item. Input that is not a usable URL, or a document that is not a feed,
// is a plain false; network and HTTP failures are errors.
type FeedProbe struct {
	validator *validation.FeedURLValidator
	fetcher   *feed.Fetcher
	parser    *feed.Parser
	log       *debuglog.FieldLogger
}

func NewFeedProbe(validator *validation.FeedURLValidator, fetcher *feed.Fetcher) *FeedProbe {
	return &FeedProbe{
		validator: validator,
		fetcher:   fetcher,
		parser:    feed.NewParser(),
		log:       debuglog.WithFields(map[string]any{"component": "operation", "kind": KindFeed}),
	}
}

func (p *FeedProbe) Run(ctx context.Context, input string) (bool, error) {
	url, err := p.validator.ValidateAndNormalize(input)
	if err != nil {
		if errors.Is(err, validation.ErrInvalidURL) {
			p.log.Debugf("rejected %q: %v", input, err)
			return false, nil
		}
		return false, err
	}

	resp, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	summary, err := p.parser.Parse(resp.Body)
	if err != nil {
		p.log.Infof("%s is not a feed: %v", url, err)
		return false, nil
	}

	p.log.Infof("%s: %s feed %q with %d items", url, summary.FeedType, summary.Title, summary.ItemCount)
	return summary.ItemCount > 0, nil
}
