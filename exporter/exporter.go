// Package exporter renders a live-channel directory as JSON, an extended
// M3U playlist, the plain-text "#genre#" format, or YAML.
//
// Every format preserves directory order exactly. Consolidate first when a
// canonical order is wanted.
package exporter

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/live"
	"github.com/erraggy/tvmerge/mergeerrors"
)

// Format is an export format.
type Format string

const (
	// FormatJSON is an indented JSON array of groups.
	FormatJSON Format = "json"
	// FormatPlaylist is an extended M3U playlist.
	FormatPlaylist Format = "playlist"
	// FormatText is the "<group>,#genre#" text directory.
	FormatText Format = "text"
	// FormatYAML is a YAML sequence of groups.
	FormatYAML Format = "yaml"
)

var formatAliases = map[string]Format{
	"m3u":  FormatPlaylist,
	"txt":  FormatText,
	"yml":  FormatYAML,
	"json": FormatJSON,
}

// ValidFormats returns the canonical format names.
func ValidFormats() []string {
	return []string{string(FormatJSON), string(FormatPlaylist), string(FormatText), string(FormatYAML)}
}

// ParseFormat resolves a format name or alias (m3u, txt, yml),
// ignoring case.
func ParseFormat(name string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch f := Format(key); f {
	case FormatJSON, FormatPlaylist, FormatText, FormatYAML:
		return f, nil
	}
	if f, ok := formatAliases[key]; ok {
		return f, nil
	}
	return "", &mergeerrors.ConfigError{
		Option:  "format",
		Value:   name,
		Message: fmt.Sprintf("unknown export format; expected one of %s", strings.Join(ValidFormats(), ", ")),
	}
}

// Extension returns the conventional file extension for f, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatPlaylist:
		return ".m3u"
	case FormatText:
		return ".txt"
	case FormatYAML:
		return ".yaml"
	default:
		return ".json"
	}
}

// Export renders groups in format. Aliases are accepted.
func Export(groups live.Groups, format Format) (string, error) {
	f, err := ParseFormat(string(format))
	if err != nil {
		return "", fmt.Errorf("exporter: %w", err)
	}
	switch f {
	case FormatPlaylist:
		return Playlist(groups), nil
	case FormatText:
		return Text(groups), nil
	case FormatYAML:
		return YAML(groups)
	default:
		return JSON(groups)
	}
}

// JSON renders groups as a JSON array indented by two spaces. HTML
// characters are not escaped.
func JSON(groups live.Groups) (string, error) {
	data, err := document.MarshalIndent(groups.ToDocument(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("exporter: json: %w", err)
	}
	return string(data), nil
}

// YAML renders groups as a YAML sequence.
func YAML(groups live.Groups) (string, error) {
	data, err := yaml.Marshal(groups.ToDocument())
	if err != nil {
		return "", fmt.Errorf("exporter: yaml: %w", err)
	}
	return string(data), nil
}

// Playlist renders groups as an extended M3U playlist: a #EXTM3U header
// followed by an #EXTINF line and the URL line for every non-empty URL.
func Playlist(groups live.Groups) string {
	lines := []string{"#EXTM3U"}
	for _, g := range groups {
		for _, ch := range g.Channels {
			for _, url := range ch.URLs {
				if url == "" {
					continue
				}
				lines = append(lines,
					fmt.Sprintf(`#EXTINF:-1 tvg-name="%s" group-title="%s",%s`, ch.Name, g.Group, ch.Name),
					url)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Text renders groups in the "#genre#" text format. Each group starts with
// "<group>,#genre#" and ends with a blank line. Each channel is one line,
// "<name>,<url1>#<url2>", with '#' inside URLs escaped as %23. Channels
// without URLs are omitted.
func Text(groups live.Groups) string {
	var lines []string
	for _, g := range groups {
		lines = append(lines, g.Group+",#genre#")
		for _, ch := range g.Channels {
			urls := make([]string, 0, len(ch.URLs))
			for _, url := range ch.URLs {
				if url != "" {
					urls = append(urls, strings.ReplaceAll(url, "#", "%23"))
				}
			}
			if len(urls) == 0 {
				continue
			}
			lines = append(lines, ch.Name+","+strings.Join(urls, "#"))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
