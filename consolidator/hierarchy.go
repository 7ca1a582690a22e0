package consolidator

import (
	"slices"

	"github.com/erraggy/tvmerge/live"
)

type hChannel struct {
	label string
	urls  []string
	seen  map[string]struct{}
}

type hGroup struct {
	label    string
	channels []*hChannel
	byLabel  map[string]*hChannel
}

// Hierarchy maps group label to channel label to an ordered set of URLs.
// Groups and channels keep insertion order until Groups freezes them.
type Hierarchy struct {
	groups  []*hGroup
	byLabel map[string]*hGroup
}

// NewHierarchy returns an empty Hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{byLabel: make(map[string]*hGroup)}
}

// Insert adds url under group and channel, creating both as needed. It
// reports whether the URL was new to that channel.
func (h *Hierarchy) Insert(group, channel, url string) bool {
	g, ok := h.byLabel[group]
	if !ok {
		g = &hGroup{label: group, byLabel: make(map[string]*hChannel)}
		h.byLabel[group] = g
		h.groups = append(h.groups, g)
	}
	ch, ok := g.byLabel[channel]
	if !ok {
		ch = &hChannel{label: channel, seen: make(map[string]struct{})}
		g.byLabel[channel] = ch
		g.channels = append(g.channels, ch)
	}
	if _, dup := ch.seen[url]; dup {
		return false
	}
	ch.seen[url] = struct{}{}
	ch.urls = append(ch.urls, url)
	return true
}

// Remove deletes channel from group and returns its URLs. A group left
// without channels is deleted too.
func (h *Hierarchy) Remove(group, channel string) []string {
	g, ok := h.byLabel[group]
	if !ok {
		return nil
	}
	ch, ok := g.byLabel[channel]
	if !ok {
		return nil
	}
	delete(g.byLabel, channel)
	g.channels = slices.DeleteFunc(g.channels, func(c *hChannel) bool { return c == ch })
	if len(g.channels) == 0 {
		delete(h.byLabel, group)
		h.groups = slices.DeleteFunc(h.groups, func(x *hGroup) bool { return x == g })
	}
	return ch.urls
}

// Len returns the number of groups.
func (h *Hierarchy) Len() int {
	return len(h.groups)
}

// Groups returns the hierarchy as a directory in insertion order.
func (h *Hierarchy) Groups() live.Groups {
	out := make(live.Groups, 0, len(h.groups))
	for _, g := range h.groups {
		group := live.Group{Group: g.label, Channels: make([]live.Channel, 0, len(g.channels))}
		for _, ch := range g.channels {
			group.Channels = append(group.Channels, live.Channel{
				Name: ch.label,
				URLs: append([]string(nil), ch.urls...),
			})
		}
		out = append(out, group)
	}
	return out
}

// singletons returns groups, other than skip, whose only channel carries
// the group's own label.
func (h *Hierarchy) singletons(skip string) []string {
	var labels []string
	for _, g := range h.groups {
		if g.label == skip || len(g.channels) != 1 {
			continue
		}
		if g.channels[0].label == g.label {
			labels = append(labels, g.label)
		}
	}
	return labels
}
