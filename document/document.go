package document

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies which variant a Document holds.
type Kind uint8

const (
	// KindNull is the zero Kind; the zero Document is null.
	KindNull Kind = iota
	// KindBool holds a boolean.
	KindBool
	// KindNumber holds a numeric literal.
	KindNumber
	// KindString holds a string.
	KindString
	// KindList holds an ordered sequence of documents.
	KindList
	// KindMap holds an ordered mapping of string keys to documents.
	KindMap
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Document is a recursive JSON-compatible value.
// The zero value is a null document.
type Document struct {
	kind  Kind
	flag  bool
	text  string // string value or number literal
	items []Document
	m     *Map
}

// Null returns a null document.
func Null() Document {
	return Document{}
}

// Bool returns a boolean document.
func Bool(v bool) Document {
	return Document{kind: KindBool, flag: v}
}

// String returns a string document.
func String(v string) Document {
	return Document{kind: KindString, text: v}
}

// Int returns a number document holding an integer.
func Int(v int64) Document {
	return Document{kind: KindNumber, text: strconv.FormatInt(v, 10)}
}

// Number returns a number document for a float. NaN and infinities are not
// representable in JSON and become null.
func Number(v float64) Document {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null()
	}
	return Document{kind: KindNumber, text: formatFloat(v)}
}

// NumberText returns a number document from a JSON numeric literal. It
// reports false when the literal is not a finite JSON number.
func NumberText(literal string) (Document, bool) {
	if !isJSONNumber(literal) {
		return Null(), false
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Null(), false
	}
	return Document{kind: KindNumber, text: literal}, true
}

// List returns a list document. The items slice is copied.
func List(items ...Document) Document {
	return Document{kind: KindList, items: slices.Clone(items)}
}

// Object wraps a Map as a document. A nil map yields an empty map document.
// The caller must not modify m afterwards.
func Object(m *Map) Document {
	if m == nil {
		m = NewMap(0)
	}
	return Document{kind: KindMap, m: m}
}

// Kind returns the variant held by the document.
func (d Document) Kind() Kind {
	return d.kind
}

// IsNull reports whether the document is null.
func (d Document) IsNull() bool {
	return d.kind == KindNull
}

// AsBool returns the boolean value and whether the document is a bool.
func (d Document) AsBool() (bool, bool) {
	return d.flag, d.kind == KindBool
}

// AsString returns the string value and whether the document is a string.
func (d Document) AsString() (string, bool) {
	if d.kind != KindString {
		return "", false
	}
	return d.text, true
}

// AsNumber returns the number literal and whether the document is a number.
func (d Document) AsNumber() (string, bool) {
	if d.kind != KindNumber {
		return "", false
	}
	return d.text, true
}

// Float returns the numeric value and whether the document is a number.
func (d Document) Float() (float64, bool) {
	if d.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(d.text, 64)
	return f, err == nil
}

// AsList returns a copy of the list items and whether the document is a list.
func (d Document) AsList() ([]Document, bool) {
	if d.kind != KindList {
		return nil, false
	}
	return slices.Clone(d.items), true
}

// AsMap returns the underlying map and whether the document is a map.
// The returned map must be treated as read-only.
func (d Document) AsMap() (*Map, bool) {
	if d.kind != KindMap {
		return nil, false
	}
	return d.m, true
}

// Len returns the number of list items or map entries, and 0 otherwise.
func (d Document) Len() int {
	switch d.kind {
	case KindList:
		return len(d.items)
	case KindMap:
		return d.m.Len()
	default:
		return 0
	}
}

// Index returns the i-th list item. It reports false when the document is
// not a list or i is out of range.
func (d Document) Index(i int) (Document, bool) {
	if d.kind != KindList || i < 0 || i >= len(d.items) {
		return Null(), false
	}
	return d.items[i], true
}

// Get returns the value stored under key when the document is a map.
func (d Document) Get(key string) (Document, bool) {
	if d.kind != KindMap {
		return Null(), false
	}
	return d.m.Get(key)
}

// GetString returns the string stored under key when the document is a map
// and the value is a string.
func (d Document) GetString(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Equal reports whether two documents are structurally equal. Map key order
// is ignored and numbers compare by value.
func Equal(a, b Document) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.flag == b.flag
	case KindString:
		return a.text == b.text
	case KindNumber:
		if a.text == b.text {
			return true
		}
		fa, okA := a.Float()
		fb, okB := b.Float()
		return okA && okB && fa == fb
	case KindList:
		return slices.EqualFunc(a.items, b.items, Equal)
	case KindMap:
		if a.m.Len() != b.m.Len() {
			return false
		}
		for k, av := range a.m.All() {
			bv, ok := b.m.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CanonicalKey returns a string that is identical for structurally equal
// documents. It is used for set semantics over arbitrary documents.
func (d Document) CanonicalKey() string {
	var sb strings.Builder
	writeCanonical(&sb, d)
	return sb.String()
}

func writeCanonical(sb *strings.Builder, d Document) {
	switch d.kind {
	case KindNull:
		sb.WriteString("n")
	case KindBool:
		if d.flag {
			sb.WriteString("t")
		} else {
			sb.WriteString("f")
		}
	case KindNumber:
		sb.WriteByte('#')
		if f, ok := d.Float(); ok {
			sb.WriteString(formatFloat(f))
		} else {
			sb.WriteString(d.text)
		}
	case KindString:
		sb.WriteString(strconv.Quote(d.text))
	case KindList:
		sb.WriteByte('[')
		for i, item := range d.items {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, item)
		}
		sb.WriteByte(']')
	case KindMap:
		keys := d.m.Keys()
		slices.Sort(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			v, _ := d.m.Get(k)
			writeCanonical(sb, v)
		}
		sb.WriteByte('}')
	}
}

// formatFloat renders a float the way encoding/json does.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return strconv.FormatFloat(f, format, -1, 64)
}
