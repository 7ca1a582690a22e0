package consolidator

import (
	"strings"
	"unicode/utf8"

	"github.com/erraggy/tvmerge/live"
)

// record is one (group, channel, url) occurrence.
type record struct {
	group   string
	channel string
	url     string
}

// Tally accumulates label votes per URL. The zero value is not usable;
// create one with NewTally.
type Tally struct {
	urls        []string
	groups      map[string]map[string]int
	channels    map[string]map[string]int
	passthrough []record
	passSeen    map[string]struct{}
}

// NewTally returns an empty Tally.
func NewTally() *Tally {
	return &Tally{
		groups:   make(map[string]map[string]int),
		channels: make(map[string]map[string]int),
		passSeen: make(map[string]struct{}),
	}
}

// Vote records one occurrence of url under group and channel.
func (t *Tally) Vote(group, channel, url string) {
	gv, ok := t.groups[url]
	if !ok {
		gv = make(map[string]int)
		t.groups[url] = gv
		t.channels[url] = make(map[string]int)
		t.urls = append(t.urls, url)
	}
	gv[group]++
	t.channels[url][channel]++
}

// Pass records an occurrence that keeps its original pairing. Only the
// first record of each URL is kept.
func (t *Tally) Pass(group, channel, url string) {
	if _, dup := t.passSeen[url]; dup {
		return
	}
	t.passSeen[url] = struct{}{}
	t.passthrough = append(t.passthrough, record{group: group, channel: channel, url: url})
}

// Add folds other into t. Counts are summed; URLs and passthrough records
// new to t are appended in other's order.
func (t *Tally) Add(other *Tally) {
	for _, url := range other.urls {
		gv, ok := t.groups[url]
		if !ok {
			gv = make(map[string]int)
			t.groups[url] = gv
			t.channels[url] = make(map[string]int)
			t.urls = append(t.urls, url)
		}
		for label, n := range other.groups[url] {
			gv[label] += n
		}
		cv := t.channels[url]
		for label, n := range other.channels[url] {
			cv[label] += n
		}
	}
	for _, rec := range other.passthrough {
		t.Pass(rec.group, rec.channel, rec.url)
	}
}

// URLs returns the voted URLs in first-seen order.
func (t *Tally) URLs() []string {
	return append([]string(nil), t.urls...)
}

// GroupVotes returns a copy of the group votes for url.
func (t *Tally) GroupVotes(url string) map[string]int {
	return copyVotes(t.groups[url])
}

// ChannelVotes returns a copy of the channel votes for url.
func (t *Tally) ChannelVotes(url string) map[string]int {
	return copyVotes(t.channels[url])
}

func copyVotes(v map[string]int) map[string]int {
	out := make(map[string]int, len(v))
	for k, n := range v {
		out[k] = n
	}
	return out
}

// Winner returns the winning group and channel labels for url.
func (t *Tally) Winner(url string) (group, channel string, ok bool) {
	gv, ok := t.groups[url]
	if !ok {
		return "", "", false
	}
	return winner(gv), winner(t.channels[url]), true
}

// winner picks the label with the highest count, then the fewest runes,
// then the smallest label.
func winner(votes map[string]int) string {
	var best string
	bestCount := -1
	for label, n := range votes {
		if bestCount < 0 || beats(label, n, best, bestCount) {
			best, bestCount = label, n
		}
	}
	return best
}

func beats(label string, n int, other string, otherN int) bool {
	if n != otherN {
		return n > otherN
	}
	if l, ol := utf8.RuneCountInString(label), utf8.RuneCountInString(other); l != ol {
		return l < ol
	}
	return label < other
}

// scan tallies groups, sending excluded channels to passthrough.
func scan(groups []live.Group, exclude ExcludeFunc, stats *Stats) *Tally {
	t := NewTally()
	for _, g := range groups {
		for _, ch := range g.Channels {
			excluded := exclude != nil && exclude(ch.Name)
			for _, url := range ch.URLs {
				if strings.TrimSpace(url) == "" {
					stats.BlankURLs++
					continue
				}
				stats.ScannedURLs++
				if excluded {
					t.Pass(g.Group, ch.Name, url)
					continue
				}
				t.Vote(g.Group, ch.Name, url)
			}
		}
	}
	return t
}
