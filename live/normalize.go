package live

import (
	"strings"

	"github.com/erraggy/tvmerge/document"
)

// Rejection reasons reported by Normalize.
const (
	ReasonNotMap         = "not a map"
	ReasonBlankGroup     = "group is missing or blank"
	ReasonNoChannels     = "channels is missing or empty"
	ReasonProxy          = "references proxy://"
	ReasonNoValidChannel = "no channel has a name and a url"
	ReasonUnsupportedURL = "url is not an .m3u, .m3u8 or .txt playlist"
)

// Rejection describes a lives element that Normalize dropped.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// RemoteRef is a playlist URL found in a "lives" array.
type RemoteRef struct {
	URL string
	// Position is the index in NormalizeResult.Groups before which the
	// groups imported from URL belong.
	Position int
}

// NormalizeResult is the outcome of validating a "lives" array.
type NormalizeResult struct {
	// Groups are the valid groups in input order. Converted .m3u8
	// references appear at the position of the reference.
	Groups Groups
	// Remote lists .m3u and .txt playlist references, in input order, that
	// must be fetched and parsed with ParsePlaylist.
	Remote []RemoteRef
	// Converted counts .m3u8 references turned into groups.
	Converted int
	// Rejected lists the dropped elements.
	Rejected []Rejection
}

// Normalize validates a raw "lives" array. Anything other than a list
// yields an empty result. Channels without a usable name or URL are
// dropped from otherwise valid groups, and blank URLs are removed.
func Normalize(doc document.Document) NormalizeResult {
	var result NormalizeResult
	items, ok := doc.AsList()
	if !ok {
		return result
	}

	for i, item := range items {
		group, reason := validateGroup(item)
		if reason == "" {
			result.Groups = append(result.Groups, group)
			continue
		}

		ref, ok := playlistRef(item)
		if !ok {
			result.Rejected = append(result.Rejected, Rejection{Index: i, Reason: reason})
			continue
		}
		lower := strings.ToLower(ref)
		switch {
		case strings.HasSuffix(lower, ".m3u"), strings.HasSuffix(lower, ".txt"):
			result.Remote = append(result.Remote, RemoteRef{URL: ref, Position: len(result.Groups)})
		case strings.HasSuffix(lower, ".m3u8"):
			result.Groups = append(result.Groups, streamGroup(item, ref))
			result.Converted++
		default:
			result.Rejected = append(result.Rejected, Rejection{Index: i, Reason: ReasonUnsupportedURL})
		}
	}
	return result
}

// Splice returns the groups with the groups imported for each remote
// reference inserted at the reference's position. imported[i] belongs to
// r.Remote[i]; a nil entry inserts nothing.
func (r NormalizeResult) Splice(imported []Groups) Groups {
	total := len(r.Groups)
	for _, gs := range imported {
		total += len(gs)
	}
	out := make(Groups, 0, total)
	next := 0
	flush := func(pos int) {
		for ; next < len(r.Remote) && r.Remote[next].Position <= pos; next++ {
			if next < len(imported) {
				out = append(out, imported[next]...)
			}
		}
	}
	for i, g := range r.Groups {
		flush(i)
		out = append(out, g)
	}
	flush(len(r.Groups))
	return out
}

// validateGroup returns the cleaned group, or a non-empty reason when the
// element cannot be used as-is.
func validateGroup(item document.Document) (Group, string) {
	m, ok := item.AsMap()
	if !ok {
		return Group{}, ReasonNotMap
	}
	label, ok := m.Get("group")
	name, _ := label.AsString()
	if !ok || strings.TrimSpace(name) == "" {
		return Group{}, ReasonBlankGroup
	}
	chDoc, _ := m.Get("channels")
	channels, ok := chDoc.AsList()
	if !ok || len(channels) == 0 {
		return Group{}, ReasonNoChannels
	}
	if containsProxy(item) {
		return Group{}, ReasonProxy
	}

	group := Group{Group: name}
	for _, chItem := range channels {
		if ch, ok := validateChannel(chItem); ok {
			group.Channels = append(group.Channels, ch)
		}
	}
	if len(group.Channels) == 0 {
		return Group{}, ReasonNoValidChannel
	}
	return group, ""
}

func validateChannel(item document.Document) (Channel, bool) {
	m, ok := item.AsMap()
	if !ok {
		return Channel{}, false
	}
	name, ok := m.Get("name")
	label, _ := name.AsString()
	if !ok || strings.TrimSpace(label) == "" {
		return Channel{}, false
	}
	urlDoc, _ := m.Get("urls")
	urls, _ := urlDoc.AsList()
	ch := Channel{Name: label}
	for _, u := range urls {
		if s, ok := u.AsString(); ok && strings.TrimSpace(s) != "" {
			ch.URLs = append(ch.URLs, s)
		}
	}
	return ch, len(ch.URLs) > 0
}

// containsProxy reports whether any key or string inside d mentions
// proxy://.
func containsProxy(d document.Document) bool {
	switch d.Kind() {
	case document.KindString:
		s, _ := d.AsString()
		return strings.Contains(s, "proxy://")
	case document.KindList:
		items, _ := d.AsList()
		for _, item := range items {
			if containsProxy(item) {
				return true
			}
		}
	case document.KindMap:
		m, _ := d.AsMap()
		for k, v := range m.All() {
			if strings.Contains(k, "proxy://") || containsProxy(v) {
				return true
			}
		}
	}
	return false
}

// playlistRef returns the trimmed "url" of a playlist reference element.
func playlistRef(item document.Document) (string, bool) {
	ref, ok := item.GetString("url")
	if !ok {
		return "", false
	}
	ref = strings.TrimSpace(ref)
	return ref, ref != ""
}

func streamGroup(item document.Document, ref string) Group {
	group, _ := item.GetString("group")
	if group = strings.TrimSpace(group); group == "" {
		group = StreamGroupLabel
	}
	name, _ := item.GetString("name")
	if name = strings.TrimSpace(name); name == "" {
		name = StreamChannelLabel
	}
	return Group{Group: group, Channels: []Channel{{Name: name, URLs: []string{ref}}}}
}
