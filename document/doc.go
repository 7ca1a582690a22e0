// Package document provides the recursive, JSON-compatible value type that
// every tvmerge component consumes and produces.
//
// A [Document] is a tagged variant: exactly one of Null, Bool, Number,
// String, List, or Map. Maps preserve insertion order so that merged and
// exported output stays close to the sources it came from, and numbers keep
// their literal text so integers round-trip unchanged.
//
// # Construction
//
//	m := document.NewMap(2)
//	m.Set("group", document.String("News"))
//	m.Set("channels", document.List())
//	doc := document.Object(m)
//
// Or decode raw bytes (JSON or YAML, detected from content):
//
//	doc, err := document.Parse(data)
//
// # Immutability
//
// Documents are treated as immutable once built. Accessors return copies of
// list slices, and components that derive new documents (the merger, the
// aggregator) build fresh maps rather than editing their inputs. A [Map] is
// only mutated by the code that created it, before it is wrapped with
// [Object].
package document
