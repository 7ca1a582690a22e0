package aggregator

import (
	"slices"
	"strings"

	"github.com/erraggy/tvmerge/document"
)

// DefaultRepositoryMarkers are the top-level fields that make a document a
// single repository rather than an index of other sources.
var DefaultRepositoryMarkers = []string{
	"video", "spider", "sites", "iptv", "channel", "analyze", "lives", "parses",
}

// IsSingleRepository reports whether doc is a map carrying at least one of
// markers at its top level. A nil markers slice uses DefaultRepositoryMarkers.
func IsSingleRepository(doc document.Document, markers []string) bool {
	m, ok := doc.AsMap()
	if !ok {
		return false
	}
	if markers == nil {
		markers = DefaultRepositoryMarkers
	}
	return slices.ContainsFunc(markers, m.Has)
}

// ExtractURLs returns every http(s) string found anywhere in doc, in
// document order and without duplicates.
func ExtractURLs(doc document.Document) []string {
	var urls []string
	seen := make(map[string]struct{})
	var walk func(d document.Document)
	walk = func(d document.Document) {
		switch d.Kind() {
		case document.KindString:
			s, _ := d.AsString()
			s = strings.TrimSpace(s)
			if !IsRemote(s) {
				return
			}
			if _, dup := seen[s]; dup {
				return
			}
			seen[s] = struct{}{}
			urls = append(urls, s)
		case document.KindList:
			items, _ := d.AsList()
			for _, item := range items {
				walk(item)
			}
		case document.KindMap:
			m, _ := d.AsMap()
			for _, v := range m.All() {
				walk(v)
			}
		}
	}
	walk(doc)
	return urls
}
