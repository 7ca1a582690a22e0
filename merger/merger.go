package merger

import (
	"fmt"
	"log/slog"

	"github.com/erraggy/tvmerge/document"
)

// mergerLogger is used for diagnostics in merge functions.
// Tests can replace this with a discard logger.
var mergerLogger = slog.Default()

// Merger merges documents. It is safe for concurrent use.
type Merger struct {
	identity IdentityFunc
	match    IdentityMatch
}

// Option is a function that configures a Merger.
type Option func(*Merger) error

// WithIdentity sets the identity extraction strategy.
func WithIdentity(fn IdentityFunc) Option {
	return func(m *Merger) error {
		if fn == nil {
			return fmt.Errorf("identity function is nil")
		}
		m.identity = fn
		return nil
	}
}

// WithIdentityFields identifies list elements by the first present field
// among fields.
func WithIdentityFields(fields ...string) Option {
	return func(m *Merger) error {
		if len(fields) == 0 {
			return fmt.Errorf("at least one identity field is required")
		}
		m.identity = FieldIdentity(fields...)
		return nil
	}
}

// WithIdentityMatch sets how identities from different fields relate.
func WithIdentityMatch(mode IdentityMatch) Option {
	return func(m *Merger) error {
		if !IsValidIdentityMatch(string(mode)) {
			return fmt.Errorf("invalid identity match %q (valid: %v)", mode, ValidIdentityMatches())
		}
		m.match = mode
		return nil
	}
}

// New creates a Merger. Without options it identifies elements by
// DefaultIdentityFields and uses MatchFieldScoped.
func New(opts ...Option) (*Merger, error) {
	m := &Merger{
		identity: FieldIdentity(DefaultIdentityFields...),
		match:    MatchFieldScoped,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("merger: %w", err)
		}
	}
	return m, nil
}

// Default returns a Merger with the default configuration.
func Default() *Merger {
	m, _ := New()
	return m
}

// Merge merges incoming onto base and returns the result.
func (m *Merger) Merge(base, incoming document.Document) document.Document {
	out, _ := m.MergeWithReport(base, incoming)
	return out
}

// MergeWithReport merges incoming onto base and returns the result together
// with the warnings found along the way.
func (m *Merger) MergeWithReport(base, incoming document.Document) (document.Document, Warnings) {
	s := &mergeState{merger: m}
	out := s.merge("$", base, incoming)
	return out, s.warnings
}

// mergeState carries per-call accumulators.
type mergeState struct {
	merger   *Merger
	warnings Warnings
}

func (s *mergeState) merge(path string, base, incoming document.Document) document.Document {
	switch {
	case base.Kind() == document.KindMap && incoming.Kind() == document.KindMap:
		bm, _ := base.AsMap()
		im, _ := incoming.AsMap()
		return document.Object(s.mergeMaps(path, bm, im))
	case base.Kind() == document.KindList && incoming.Kind() == document.KindList:
		bl, _ := base.AsList()
		il, _ := incoming.AsList()
		return document.List(s.mergeLists(path, bl, il)...)
	default:
		return incoming
	}
}

func (s *mergeState) mergeMaps(path string, base, incoming *document.Map) *document.Map {
	out := base.Clone()
	for k, v := range incoming.All() {
		if existing, ok := out.Get(k); ok {
			out.Set(k, s.merge(path+"."+k, existing, v))
			continue
		}
		out.Set(k, v)
	}
	return out
}

func (s *mergeState) mergeLists(path string, base, incoming []document.Document) []document.Document {
	if allMaps(base) && allMaps(incoming) {
		return s.reconcile(path, base, incoming)
	}
	return union(base, incoming)
}

func allMaps(items []document.Document) bool {
	for _, item := range items {
		if item.Kind() != document.KindMap {
			return false
		}
	}
	return true
}

// reconcile merges two lists of maps by element identity. Elements without
// an identity are never indexed, which gives each of them a unique identity.
func (s *mergeState) reconcile(path string, base, incoming []document.Document) []document.Document {
	mode := s.merger.match
	entries := make([]*document.Map, 0, len(base)+len(incoming))
	index := make(map[string]int, len(base))
	// valueFields remembers the first field each identity value was seen
	// under, to report cross-field matches that field scoping keeps apart.
	valueFields := make(map[string]string, len(base))

	register := func(id Identity, pos int) {
		key := indexKey(id, mode)
		if _, exists := index[key]; !exists {
			index[key] = pos
		}
		if _, seen := valueFields[id.valueKey()]; !seen {
			valueFields[id.valueKey()] = id.Field
		}
	}

	// A base identity seen twice keeps the first position and the later
	// element.
	for i, item := range base {
		mp, _ := item.AsMap()
		id, ok := s.merger.identity(item)
		if ok {
			if pos, dup := index[indexKey(id, mode)]; dup {
				entries[pos] = mp
				elemPath := fmt.Sprintf("%s[%d]", path, i)
				s.warnings = append(s.warnings, NewDuplicateIdentityWarning(elemPath, id.Value, pos))
				mergerLogger.Debug("duplicate base identity replaced earlier entry",
					"path", elemPath, "value", id.Value, "replaced", pos)
				continue
			}
		}
		entries = append(entries, mp)
		if ok {
			register(id, len(entries)-1)
		}
	}

	for _, item := range incoming {
		mp, _ := item.AsMap()
		id, ok := s.merger.identity(item)
		if !ok {
			entries = append(entries, mp)
			continue
		}
		if pos, found := index[indexKey(id, mode)]; found {
			updated := entries[pos].Clone()
			for k, v := range mp.All() {
				updated.Set(k, v)
			}
			entries[pos] = updated
			continue
		}
		if field, seen := valueFields[id.valueKey()]; seen && field != id.Field {
			elemPath := fmt.Sprintf("%s[%d]", path, len(entries))
			s.warnings = append(s.warnings, NewAmbiguousIdentityWarning(elemPath, id.Value, field, id.Field))
			mergerLogger.Debug("identity matched through different fields, kept separate",
				"path", elemPath, "value", id.Value, "base_field", field, "incoming_field", id.Field)
		}
		entries = append(entries, mp)
		register(id, len(entries)-1)
	}

	out := make([]document.Document, 0, len(entries))
	for _, mp := range entries {
		out = append(out, document.Object(mp))
	}
	return out
}

// union returns base followed by incoming, without structural duplicates.
func union(base, incoming []document.Document) []document.Document {
	seen := make(map[string]struct{}, len(base)+len(incoming))
	out := make([]document.Document, 0, len(base)+len(incoming))
	for _, list := range [][]document.Document{base, incoming} {
		for _, item := range list {
			key := item.CanonicalKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
