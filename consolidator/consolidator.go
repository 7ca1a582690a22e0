package consolidator

import (
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/live"
	"github.com/erraggy/tvmerge/mergeerrors"
)

// consolidatorLogger is used for diagnostics during consolidation.
// Tests can replace this with a discard logger.
var consolidatorLogger = slog.Default()

const (
	// DefaultCatchAllGroup receives channels from dissolved singleton groups.
	DefaultCatchAllGroup = "单剧"
	// DefaultLargeGroupThreshold is the channel count above which a group
	// sorts into the leading tier.
	DefaultLargeGroupThreshold = 10
)

// Config controls consolidation.
type Config struct {
	// CatchAllGroup receives channels from dissolved singleton groups.
	CatchAllGroup string
	// Exclude selects channel labels that keep their original pairing
	// instead of voting. Nil excludes nothing.
	Exclude ExcludeFunc
	// LargeGroupThreshold is the channel count above which a group sorts
	// into the leading tier.
	LargeGroupThreshold int
	// Workers splits the vote scan across goroutines when greater than 1.
	Workers int
	// UnifyChannels places every URL of a channel label under one group,
	// chosen by a vote over the winning groups of its URLs.
	UnifyChannels bool
}

// DefaultConfig returns the default consolidation settings. Nothing is
// excluded from voting.
func DefaultConfig() Config {
	return Config{
		CatchAllGroup:       DefaultCatchAllGroup,
		LargeGroupThreshold: DefaultLargeGroupThreshold,
		Workers:             1,
	}
}

// Stats summarizes a consolidation run.
type Stats struct {
	// SkippedGroups and SkippedChannels count entries that were not maps.
	SkippedGroups   int `json:"skipped_groups"`
	SkippedChannels int `json:"skipped_channels"`
	// SkippedURLs counts URLs that were not strings.
	SkippedURLs int `json:"skipped_urls"`
	// BlankURLs counts empty or whitespace-only URLs.
	BlankURLs int `json:"blank_urls"`
	// ScannedURLs counts non-blank URL occurrences, duplicates included.
	ScannedURLs int `json:"scanned_urls"`
	// UniqueURLs counts distinct URLs in the output.
	UniqueURLs int `json:"unique_urls"`
	// Passthrough counts URLs placed with their original pairing.
	Passthrough int `json:"passthrough"`
	// Regrouped counts channels moved into the catch-all group.
	Regrouped int `json:"regrouped"`
	// Groups and Channels count the output.
	Groups   int `json:"groups"`
	Channels int `json:"channels"`
}

func (s *Stats) add(other Stats) {
	s.BlankURLs += other.BlankURLs
	s.ScannedURLs += other.ScannedURLs
}

// Result contains the canonical directory and run statistics.
type Result struct {
	Groups live.Groups
	Stats  Stats
}

// Consolidator collapses live directories. It is safe for concurrent use.
type Consolidator struct {
	cfg Config
}

// New creates a Consolidator from cfg.
func New(cfg Config) (*Consolidator, error) {
	if strings.TrimSpace(cfg.CatchAllGroup) == "" {
		return nil, &mergeerrors.ConfigError{Option: "catch_all_group", Value: cfg.CatchAllGroup, Message: "must not be blank"}
	}
	if cfg.LargeGroupThreshold < 0 {
		return nil, &mergeerrors.ConfigError{Option: "large_group_threshold", Value: cfg.LargeGroupThreshold, Message: "must not be negative"}
	}
	if cfg.Workers < 0 {
		return nil, &mergeerrors.ConfigError{Option: "workers", Value: cfg.Workers, Message: "must not be negative"}
	}
	return &Consolidator{cfg: cfg}, nil
}

// Default returns a Consolidator using DefaultConfig.
func Default() *Consolidator {
	return &Consolidator{cfg: DefaultConfig()}
}

// ConsolidateDocument decodes a "lives" array and consolidates it. A value
// that is not a list yields an empty result.
func (c *Consolidator) ConsolidateDocument(doc document.Document) *Result {
	groups, decodeStats := live.FromDocument(doc)
	result := c.Consolidate(groups)
	result.Stats.SkippedGroups += decodeStats.SkippedGroups
	result.Stats.SkippedChannels += decodeStats.SkippedChannels
	result.Stats.SkippedURLs += decodeStats.SkippedURLs
	return result
}

// Consolidate returns the canonical form of groups. Labels are used as
// given; sanitize them first.
func (c *Consolidator) Consolidate(groups []live.Group) *Result {
	result := &Result{}
	tally := c.tally(groups, &result.Stats)

	h := NewHierarchy()
	if c.cfg.UnifyChannels {
		c.placeUnified(h, tally)
	} else {
		for _, url := range tally.urls {
			group, channel, _ := tally.Winner(url)
			h.Insert(group, channel, url)
		}
	}
	for _, rec := range tally.passthrough {
		if _, voted := tally.groups[rec.url]; voted {
			continue
		}
		if h.Insert(rec.group, rec.channel, rec.url) {
			result.Stats.Passthrough++
		}
	}

	for _, label := range h.singletons(c.cfg.CatchAllGroup) {
		urls := h.Remove(label, label)
		for _, url := range urls {
			h.Insert(c.cfg.CatchAllGroup, label, url)
		}
		result.Stats.Regrouped++
	}

	out := h.Groups()
	sortGroups(out, c.cfg.LargeGroupThreshold)
	result.Groups = out

	s := out.Stats()
	result.Stats.Groups = s.Groups
	result.Stats.Channels = s.Channels
	result.Stats.UniqueURLs = s.URLs

	consolidatorLogger.Debug("consolidated live directory",
		"input_groups", len(groups),
		"scanned_urls", result.Stats.ScannedURLs,
		"unique_urls", result.Stats.UniqueURLs,
		"groups", result.Stats.Groups,
		"channels", result.Stats.Channels,
		"passthrough", result.Stats.Passthrough,
		"regrouped", result.Stats.Regrouped)
	return result
}

// tally runs the vote scan, split into contiguous partitions when more
// than one worker is configured. Partials are reduced in partition order.
func (c *Consolidator) tally(groups []live.Group, stats *Stats) *Tally {
	workers := min(c.cfg.Workers, len(groups))
	if workers <= 1 {
		return scan(groups, c.cfg.Exclude, stats)
	}

	partials := make([]*Tally, workers)
	partStats := make([]Stats, workers)
	size := (len(groups) + workers - 1) / workers

	var g errgroup.Group
	for i := range workers {
		lo := i * size
		hi := min(lo+size, len(groups))
		if lo >= hi {
			partials[i] = NewTally()
			continue
		}
		g.Go(func() error {
			partials[i] = scan(groups[lo:hi], c.cfg.Exclude, &partStats[i])
			return nil
		})
	}
	_ = g.Wait() // scan does not fail

	total := NewTally()
	for i, part := range partials {
		total.Add(part)
		stats.add(partStats[i])
	}
	return total
}

// placeUnified inserts voted URLs so that each channel label lives in a
// single group: the group that won most often among the channel's URLs.
func (c *Consolidator) placeUnified(h *Hierarchy, tally *Tally) {
	var order []string
	votes := make(map[string]map[string]int)
	urls := make(map[string][]string)
	for _, url := range tally.urls {
		group, channel, _ := tally.Winner(url)
		gv, ok := votes[channel]
		if !ok {
			gv = make(map[string]int)
			votes[channel] = gv
			order = append(order, channel)
		}
		gv[group]++
		urls[channel] = append(urls[channel], url)
	}
	for _, channel := range order {
		group := winner(votes[channel])
		for _, url := range urls[channel] {
			h.Insert(group, channel, url)
		}
	}
}
