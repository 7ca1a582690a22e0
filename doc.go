// Package tvmerge merges TV-box catalog configurations and consolidates
// their live-channel lists.
//
// A catalog is a JSON or YAML document describing sites, parsers and
// live channels. tvmerge folds several catalogs into one, applies an
// optional override, validates and prunes site entries, and then turns
// the heterogeneous "lives" entries into a single channel hierarchy where
// every stream URL appears under exactly one channel of one group.
//
// # Packages
//
//   - document: ordered JSON/YAML document model
//   - merger: recursive merge with identity-based list union
//   - aggregator: multi-source fold, override, site validation and pruning
//   - live: channel hierarchy, lives normalization and M3U/text playlists
//   - sanitizer: group and channel label cleanup
//   - consolidator: vote-based URL placement, singleton regrouping, sorting
//   - exporter: JSON, YAML, M3U and text rendering of a hierarchy
//   - pipeline: the end-to-end run over all of the above
//
// # Quick Start
//
//	sources := []aggregator.Source{
//		{Name: "a.json", Document: docA},
//		{Name: "https://example.com/b.json", Document: docB},
//	}
//	p, err := pipeline.New(pipeline.Config{})
//	if err != nil {
//		return err
//	}
//	result, err := p.Run(ctx, sources, nil)
//	if err != nil {
//		return err
//	}
//	out, err := document.MarshalIndent(result.Document, "", "  ")
//
// The tvmerge command in cmd/tvmerge wraps the pipeline for shell use and
// also serves it over the Model Context Protocol.
package tvmerge
