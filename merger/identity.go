package merger

import (
	"slices"

	"github.com/erraggy/tvmerge/document"
)

// DefaultIdentityFields are consulted in order to identify list elements.
var DefaultIdentityFields = []string{"key", "id", "name"}

// Identity names a list element for reconciliation.
type Identity struct {
	// Field is the field the value was read from.
	Field string
	// Value is the identifying value.
	Value string
	// Numeric reports that Value came from a number rather than a string.
	Numeric bool
}

// IdentityFunc extracts the identity of a list element. It reports false when
// the element has none.
type IdentityFunc func(document.Document) (Identity, bool)

// FieldIdentity returns an IdentityFunc that uses the first field, in the
// given order, holding a non-empty string or a non-zero number.
func FieldIdentity(fields ...string) IdentityFunc {
	fields = slices.Clone(fields)
	return func(doc document.Document) (Identity, bool) {
		for _, field := range fields {
			v, ok := doc.Get(field)
			if !ok {
				continue
			}
			switch v.Kind() {
			case document.KindString:
				if s, _ := v.AsString(); s != "" {
					return Identity{Field: field, Value: s}, true
				}
			case document.KindNumber:
				if f, ok := v.Float(); ok && f != 0 {
					text, _ := v.AsNumber()
					return Identity{Field: field, Value: text, Numeric: true}, true
				}
			}
		}
		return Identity{}, false
	}
}

// IdentityMatch controls how identities found through different fields
// relate to each other.
type IdentityMatch string

const (
	// MatchFieldScoped matches elements only when both field and value agree.
	MatchFieldScoped IdentityMatch = "field-scoped"
	// MatchValueOnly matches elements whose values agree, whatever field
	// produced them.
	MatchValueOnly IdentityMatch = "value-only"
)

// ValidIdentityMatches returns all valid identity match modes.
func ValidIdentityMatches() []string {
	return []string{string(MatchFieldScoped), string(MatchValueOnly)}
}

// IsValidIdentityMatch checks if a match mode string is valid.
func IsValidIdentityMatch(mode string) bool {
	switch IdentityMatch(mode) {
	case MatchFieldScoped, MatchValueOnly:
		return true
	default:
		return false
	}
}

// indexKey returns the key used to index an identity under mode.
func indexKey(id Identity, mode IdentityMatch) string {
	if mode == MatchValueOnly {
		return id.valueKey()
	}
	return id.Field + "\x00" + id.valueKey()
}

// valueKey keeps the string "1" and the number 1 apart.
func (id Identity) valueKey() string {
	if id.Numeric {
		return "#" + id.Value
	}
	return "$" + id.Value
}
