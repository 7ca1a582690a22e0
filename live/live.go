package live

import (
	"github.com/erraggy/tvmerge/document"
)

// Default labels used when a source omits or blanks a label.
const (
	// DefaultGroupLabel names channels that carry no group.
	DefaultGroupLabel = "未分组"
	// DefaultChannelLabel names channels that carry no name.
	DefaultChannelLabel = "未命名"
	// StreamGroupLabel is the group of a bare .m3u8 reference without one.
	StreamGroupLabel = "其他"
	// StreamChannelLabel is the channel of a bare .m3u8 reference without one.
	StreamChannelLabel = "未知频道"
)

// Channel is a named channel and its playback URLs.
type Channel struct {
	Name string   `json:"name" yaml:"name"`
	URLs []string `json:"urls" yaml:"urls"`
}

// Group is a labelled list of channels.
type Group struct {
	Group    string    `json:"group" yaml:"group"`
	Channels []Channel `json:"channels" yaml:"channels"`
}

// Groups is an ordered live-channel directory.
type Groups []Group

// Stats counts the contents of a directory.
type Stats struct {
	Groups   int `json:"groups"`
	Channels int `json:"channels"`
	URLs     int `json:"urls"`
}

// DecodeStats counts entries skipped while decoding a directory.
type DecodeStats struct {
	SkippedGroups   int `json:"skipped_groups"`
	SkippedChannels int `json:"skipped_channels"`
	SkippedURLs     int `json:"skipped_urls"`
}

// Add returns the element-wise sum of s and other.
func (s DecodeStats) Add(other DecodeStats) DecodeStats {
	return DecodeStats{
		SkippedGroups:   s.SkippedGroups + other.SkippedGroups,
		SkippedChannels: s.SkippedChannels + other.SkippedChannels,
		SkippedURLs:     s.SkippedURLs + other.SkippedURLs,
	}
}

// Stats returns the number of groups, channels and URLs in g.
func (g Groups) Stats() Stats {
	s := Stats{Groups: len(g)}
	for _, group := range g {
		s.Channels += len(group.Channels)
		for _, ch := range group.Channels {
			s.URLs += len(ch.URLs)
		}
	}
	return s
}

// LabelSanitizer cleans a group or channel label.
type LabelSanitizer interface {
	Sanitize(label string) string
}

// Sanitize returns a copy of g with group labels cleaned by groups and
// channel labels cleaned by channels. A nil sanitizer leaves its labels as
// they are.
func (g Groups) Sanitize(groups, channels LabelSanitizer) Groups {
	out := make(Groups, len(g))
	for i, group := range g {
		label := group.Group
		if groups != nil {
			label = groups.Sanitize(label)
		}
		chs := make([]Channel, len(group.Channels))
		for j, ch := range group.Channels {
			name := ch.Name
			if channels != nil {
				name = channels.Sanitize(name)
			}
			chs[j] = Channel{Name: name, URLs: append([]string(nil), ch.URLs...)}
		}
		out[i] = Group{Group: label, Channels: chs}
	}
	return out
}

// FromDocument decodes a "lives" array. Anything other than a list decodes
// to an empty directory. Groups and channels that are not maps are skipped
// and counted, as are URLs that are not strings. Missing labels fall back
// to DefaultGroupLabel and DefaultChannelLabel.
func FromDocument(doc document.Document) (Groups, DecodeStats) {
	var stats DecodeStats
	items, ok := doc.AsList()
	if !ok {
		return Groups{}, stats
	}

	groups := make(Groups, 0, len(items))
	for _, item := range items {
		gm, ok := item.AsMap()
		if !ok {
			stats.SkippedGroups++
			continue
		}
		group := Group{Group: labelOf(gm, "group", DefaultGroupLabel)}
		chDoc, _ := gm.Get("channels")
		chItems, _ := chDoc.AsList()
		for _, chItem := range chItems {
			cm, ok := chItem.AsMap()
			if !ok {
				stats.SkippedChannels++
				continue
			}
			ch := Channel{Name: labelOf(cm, "name", DefaultChannelLabel)}
			urlDoc, _ := cm.Get("urls")
			urls, _ := urlDoc.AsList()
			for _, u := range urls {
				s, ok := u.AsString()
				if !ok {
					stats.SkippedURLs++
					continue
				}
				ch.URLs = append(ch.URLs, s)
			}
			group.Channels = append(group.Channels, ch)
		}
		groups = append(groups, group)
	}
	return groups, stats
}

func labelOf(m *document.Map, field, fallback string) string {
	v, ok := m.Get(field)
	if !ok {
		return fallback
	}
	s, ok := v.AsString()
	if !ok {
		return fallback
	}
	return s
}

// ToDocument encodes g as a "lives" array.
func (g Groups) ToDocument() document.Document {
	items := make([]document.Document, 0, len(g))
	for _, group := range g {
		chs := make([]document.Document, 0, len(group.Channels))
		for _, ch := range group.Channels {
			urls := make([]document.Document, len(ch.URLs))
			for i, u := range ch.URLs {
				urls[i] = document.String(u)
			}
			cm := document.NewMap(2)
			cm.Set("name", document.String(ch.Name))
			cm.Set("urls", document.List(urls...))
			chs = append(chs, document.Object(cm))
		}
		gm := document.NewMap(2)
		gm.Set("group", document.String(group.Group))
		gm.Set("channels", document.List(chs...))
		items = append(items, document.Object(gm))
	}
	return document.List(items...)
}
