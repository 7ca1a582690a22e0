package config

import (
	"fmt"
	"net/http"

	"github.com/erraggy/tvmerge/aggregator"
	"github.com/erraggy/tvmerge/consolidator"
	"github.com/erraggy/tvmerge/internal/fetch"
	"github.com/erraggy/tvmerge/merger"
	"github.com/erraggy/tvmerge/pipeline"
	"github.com/erraggy/tvmerge/sanitizer"
)

// MergerOptions returns the merger options for c.
func (c *Config) MergerOptions() []merger.Option {
	return []merger.Option{
		merger.WithIdentityFields(c.Merge.IdentityFields...),
		merger.WithIdentityMatch(merger.IdentityMatch(c.Merge.IdentityMatch)),
	}
}

// AggregatorOptions returns the aggregator options for c, including a
// merger built from MergerOptions.
func (c *Config) AggregatorOptions() ([]aggregator.Option, error) {
	m, err := merger.New(c.MergerOptions()...)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return []aggregator.Option{
		aggregator.WithMerger(m),
		aggregator.WithReplaceFields(c.Aggregate.ReplaceFields...),
		aggregator.WithProvenanceField(c.Aggregate.ProvenanceField),
		aggregator.WithRelativeRoots(c.Aggregate.RelativeRoots...),
		aggregator.WithPruneFields(c.Aggregate.PruneFields...),
		aggregator.WithRequiredSiteFields(c.Aggregate.RequiredSiteFields...),
	}, nil
}

// Sanitizers returns the group and channel label sanitizers for c.
func (c *Config) Sanitizers() (group, channel *sanitizer.Sanitizer, err error) {
	group, err = sanitizer.New(
		sanitizer.WithTokens(c.Sanitize.GroupTokens...),
		sanitizer.WithPlaceholder(c.Sanitize.Placeholder),
		sanitizer.WithWidthFold(c.Sanitize.WidthFold),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("config: group sanitizer: %w", err)
	}
	channel, err = sanitizer.New(
		sanitizer.WithTokens(c.Sanitize.ChannelTokens...),
		sanitizer.WithPlaceholder(c.Sanitize.Placeholder),
		sanitizer.WithWidthFold(c.Sanitize.WidthFold),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("config: channel sanitizer: %w", err)
	}
	return group, channel, nil
}

// ConsolidatorConfig returns the consolidator settings for c.
func (c *Config) ConsolidatorConfig() consolidator.Config {
	cc := consolidator.Config{
		CatchAllGroup:       c.Consolidate.CatchAllGroup,
		LargeGroupThreshold: c.Consolidate.LargeGroupThreshold,
		Workers:             c.Consolidate.Workers,
		UnifyChannels:       c.Consolidate.UnifyChannels,
	}
	if ex := c.Consolidate.Exclude; ex.Enabled {
		var fns []consolidator.ExcludeFunc
		if ex.Numeric {
			fns = append(fns, consolidator.ExcludeNumeric)
		}
		if len(ex.Markers) > 0 {
			fns = append(fns, consolidator.ExcludeContaining(ex.Markers...))
		}
		cc.Exclude = consolidator.AnyOf(fns...)
	}
	return cc
}

// PipelineConfig wires every stage from c. The resolver is left to the
// caller.
func (c *Config) PipelineConfig() (pipeline.Config, error) {
	aggOpts, err := c.AggregatorOptions()
	if err != nil {
		return pipeline.Config{}, err
	}
	agg, err := aggregator.New(aggOpts...)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	cons, err := consolidator.New(c.ConsolidatorConfig())
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	groups, channels, err := c.Sanitizers()
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		Aggregator:        agg,
		Consolidator:      cons,
		GroupSanitizer:    groups,
		ChannelSanitizer:  channels,
		LivesField:        c.Aggregate.LivesField,
		SkipConsolidation: c.Consolidate.Disabled,
	}, nil
}

// Fetcher returns a fetcher honoring the fetch settings. With guarded
// set, URLs come from remote clients and requests to private addresses
// are blocked unless allow_private_ips is on.
func (c *Config) Fetcher(guarded bool) *fetch.Fetcher {
	client := &http.Client{Timeout: c.Fetch.Timeout}
	if guarded && !c.Fetch.AllowPrivateIPs {
		client = fetch.NewSafeHTTPClient(c.Fetch.Timeout)
	}
	return fetch.New(
		fetch.WithHTTPClient(client),
		fetch.WithUserAgent(c.Fetch.UserAgent),
		fetch.WithMaxBytes(c.Fetch.MaxBytes),
	)
}
