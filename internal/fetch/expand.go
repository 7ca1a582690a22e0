package fetch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/erraggy/tvmerge/aggregator"
)

// DefaultConcurrency bounds parallel fetches during expansion.
const DefaultConcurrency = 8

// Expand returns src itself when it is a single repository. Otherwise src
// is treated as an index: every http(s) URL in it is fetched and decoded,
// and the decoded sources are returned in index order. URLs that fail are
// reported in errs and left out. A nil markers slice uses the aggregator
// defaults.
func (f *Fetcher) Expand(ctx context.Context, src aggregator.Source, markers []string) (sources []aggregator.Source, errs []error) {
	if aggregator.IsSingleRepository(src.Document, markers) {
		return []aggregator.Source{src}, nil
	}
	urls := aggregator.ExtractURLs(src.Document)
	fetched := make([]aggregator.Source, len(urls))
	failed := make([]error, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)
	for i, url := range urls {
		g.Go(func() error {
			s, err := f.Source(gctx, url)
			if err != nil {
				failed[i] = fmt.Errorf("%s: %w", url, err)
				return nil
			}
			fetched[i] = s
			return nil
		})
	}
	_ = g.Wait() // failures are collected per URL

	for i := range urls {
		if failed[i] != nil {
			errs = append(errs, failed[i])
			continue
		}
		sources = append(sources, fetched[i])
	}
	return sources, errs
}
