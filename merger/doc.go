// Package merger provides recursive merging of two documents with
// identity-aware reconciliation of arrays.
//
// # Merge Rules
//
//   - Map with map: union of keys; overlapping keys merge recursively. Base
//     keys keep their order and new incoming keys are appended.
//   - List with list: when every element on both sides is a map, elements are
//     reconciled by identity (see below). Otherwise the lists are combined as
//     a set: base elements first, then incoming elements not already present.
//   - Anything else: the incoming value replaces the base value.
//
// # Identity Reconciliation
//
// An [IdentityFunc] extracts an [Identity] from a list element. The default,
// FieldIdentity("key", "id", "name"), uses the first of those fields holding
// a non-empty value. Base elements are indexed by identity in order; an
// incoming element whose identity is already indexed overwrites or adds its
// top-level fields onto that entry (no deeper merge), and any other incoming
// element is appended. Elements without an identity never match anything.
//
// Two elements can carry the same value under different identity fields, for
// example {"key": "tv"} and {"name": "tv"}. How those are treated is an
// explicit choice, set with [WithIdentityMatch]:
//
//   - [MatchFieldScoped] (default): identity is the (field, value) pair, so
//     the two elements stay separate and an AmbiguousIdentity warning is
//     reported.
//   - [MatchValueOnly]: identity is the value alone and the two reconcile.
//
// # Usage
//
//	m := merger.Default()
//	merged := m.Merge(base, incoming)
//
//	m, err := merger.New(
//		merger.WithIdentityFields("key", "id"),
//		merger.WithIdentityMatch(merger.MatchValueOnly),
//	)
//	merged, warnings := m.MergeWithReport(base, incoming)
//
// Merge never modifies its inputs. Merge is not associative when operands
// hold conflicting scalars: later values win, so the grouping of a fold
// matters.
package merger
