package live

import (
	"regexp"
	"strings"
)

var (
	groupTitleRe  = regexp.MustCompile(`group-title="([^"]*)"`)
	extinfNameRe  = regexp.MustCompile(`,(.+)$`)
	playlistLines = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// builder accumulates channels into groups keeping first-seen order.
type builder struct {
	groups  Groups
	byGroup map[string]int
	byName  []map[string]int
}

func newBuilder() *builder {
	return &builder{byGroup: make(map[string]int)}
}

func (b *builder) group(label string) int {
	if i, ok := b.byGroup[label]; ok {
		return i
	}
	b.byGroup[label] = len(b.groups)
	b.groups = append(b.groups, Group{Group: label, Channels: []Channel{}})
	b.byName = append(b.byName, make(map[string]int))
	return len(b.groups) - 1
}

func (b *builder) add(label, name, url string) {
	gi := b.group(label)
	ci, ok := b.byName[gi][name]
	if !ok {
		ci = len(b.groups[gi].Channels)
		b.byName[gi][name] = ci
		b.groups[gi].Channels = append(b.groups[gi].Channels, Channel{Name: name})
	}
	ch := &b.groups[gi].Channels[ci]
	ch.URLs = append(ch.URLs, url)
}

func lines(content string) []string {
	return strings.Split(strings.TrimSpace(playlistLines.Replace(content)), "\n")
}

// ParseM3U imports an extended M3U playlist. Each #EXTINF line sets the
// channel name (the text after its first comma) and, when it carries a
// group-title attribute, the current group; the group persists until the
// next group-title. The following http(s) line is the channel URL.
func ParseM3U(content string) Groups {
	b := newBuilder()
	group := DefaultGroupLabel
	var channel string

	for _, line := range lines(content) {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXTINF"):
			if m := groupTitleRe.FindStringSubmatch(line); m != nil {
				group = m[1]
			}
			if m := extinfNameRe.FindStringSubmatch(line); m != nil {
				channel = strings.TrimSpace(m[1])
			}
		case strings.HasPrefix(line, "http") && channel != "":
			b.add(group, channel, line)
			channel = ""
		}
	}
	return b.groups
}

// ParseText imports a plain-text directory: "<group>,#genre#" lines start
// a group and "<name>,<url>#<url>" lines add URLs to a channel. Lines
// before the first group belong to DefaultGroupLabel. Groups without
// channels are kept.
func ParseText(content string) Groups {
	b := newBuilder()
	group := DefaultGroupLabel

	for _, line := range lines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, "#genre#") {
			group = strings.TrimSpace(strings.ReplaceAll(line, "#genre#", ""))
			if trimmed, ok := strings.CutSuffix(group, ","); ok {
				group = strings.TrimSpace(trimmed)
			}
			b.group(group)
			continue
		}
		name, url, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for _, url := range strings.Split(url, "#") {
			if url = strings.TrimSpace(url); url != "" {
				b.add(group, name, url)
			}
		}
	}
	return b.groups
}

// ParsePlaylist parses content as M3U when it starts with #EXTM3U and as
// plain text otherwise.
func ParsePlaylist(content string) Groups {
	if IsM3U(content) {
		return ParseM3U(content)
	}
	return ParseText(content)
}

// IsM3U reports whether content starts with the #EXTM3U header.
func IsM3U(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "#EXTM3U")
}
