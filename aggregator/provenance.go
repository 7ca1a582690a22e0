package aggregator

import (
	"net/url"
	"strings"

	"github.com/erraggy/tvmerge/document"
)

// withProvenance appends name to the provenance list in field.
// A scalar string already present becomes the first element of the list.
func withProvenance(doc document.Document, field, name string) document.Document {
	m, _ := doc.AsMap()
	out := m.Clone()

	var list []document.Document
	if existing, ok := out.Get(field); ok {
		switch existing.Kind() {
		case document.KindList:
			list, _ = existing.AsList()
		case document.KindString:
			list = []document.Document{existing}
		}
	}
	list = append(list, document.String(name))
	out.Set(field, document.List(list...))
	return document.Object(out)
}

// relativeBase picks the URL that "./" paths are resolved against: the
// first remote entry of the provenance list, else the source name.
func relativeBase(doc document.Document, field, name string) *url.URL {
	if field != "" {
		if prov, ok := doc.Get(field); ok {
			items, _ := prov.AsList()
			for _, item := range items {
				if s, ok := item.AsString(); ok {
					if u := remoteURL(s); u != nil {
						return u
					}
				}
			}
		}
	}
	return remoteURL(name)
}

func remoteURL(s string) *url.URL {
	if !IsRemote(s) {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	return u
}

// IsRemote reports whether s is an http or https URL.
func IsRemote(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// resolveRelative rewrites "./" string values under the given roots.
func resolveRelative(doc document.Document, roots []string, base *url.URL) document.Document {
	m, _ := doc.AsMap()
	var out *document.Map
	for _, root := range roots {
		v, ok := m.Get(root)
		if !ok {
			continue
		}
		if out == nil {
			out = m.Clone()
		}
		out.Set(root, rewriteRelative(v, base))
	}
	if out == nil {
		return doc
	}
	return document.Object(out)
}

// rewriteRelative walks lists and maps. Only map values are rewritten;
// bare strings inside lists are left alone.
func rewriteRelative(d document.Document, base *url.URL) document.Document {
	switch d.Kind() {
	case document.KindList:
		items, _ := d.AsList()
		for i, item := range items {
			items[i] = rewriteRelative(item, base)
		}
		return document.List(items...)
	case document.KindMap:
		m, _ := d.AsMap()
		out := document.NewMap(m.Len())
		for k, v := range m.All() {
			if s, ok := v.AsString(); ok && strings.HasPrefix(s, "./") {
				if ref, err := url.Parse(s); err == nil {
					v = document.String(base.ResolveReference(ref).String())
				}
			} else {
				v = rewriteRelative(v, base)
			}
			out.Set(k, v)
		}
		return document.Object(out)
	default:
		return d
	}
}
