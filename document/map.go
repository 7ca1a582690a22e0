package document

import (
	"iter"
	"slices"
)

// Map is an insertion-ordered mapping of string keys to documents.
type Map struct {
	keys   []string
	values map[string]Document
}

// NewMap returns an empty map with room for capacity entries.
func NewMap(capacity int) *Map {
	return &Map{
		keys:   make([]string, 0, capacity),
		values: make(map[string]Document, capacity),
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Document, bool) {
	if m == nil {
		return Null(), false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (m *Map) Set(key string, value Document) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return true
}

// All iterates over the entries in insertion order.
func (m *Map) All() iter.Seq2[string, Document] {
	return func(yield func(string, Document) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy: the entry table is new, the values are
// shared (documents are immutable).
func (m *Map) Clone() *Map {
	if m == nil {
		return NewMap(0)
	}
	out := NewMap(len(m.keys))
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}
