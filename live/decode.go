package live

import (
	"strings"

	"github.com/erraggy/tvmerge/document"
)

// Decode reads a live directory from raw content: an M3U or "#genre#" text
// playlist, a JSON/YAML list of groups, or a catalog map holding the list
// under field. Decoding errors are *mergeerrors.ParseError values.
func Decode(data []byte, field string) (Groups, DecodeStats, error) {
	content := string(data)
	if IsPlaylist(content) {
		return ParsePlaylist(content), DecodeStats{}, nil
	}
	doc, err := document.Parse(data)
	if err != nil {
		return nil, DecodeStats{}, err
	}
	if lives, ok := doc.Get(field); ok {
		doc = lives
	}
	groups, stats := FromDocument(doc)
	return groups, stats, nil
}

// IsPlaylist reports whether content is an M3U or "#genre#" text playlist
// rather than a JSON/YAML document.
func IsPlaylist(content string) bool {
	if IsM3U(content) {
		return true
	}
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return false
	}
	return strings.Contains(trimmed, ",#genre#")
}
