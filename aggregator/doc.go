// Package aggregator folds an ordered list of source documents into one
// merged catalog document.
//
// Sources are merged left to right, starting from an empty map, with the
// merger package: later scalars win and later list entries update earlier
// entries sharing their identity. An optional override document is applied
// last. Fields named by [WithReplaceFields] (by default only "lives") are
// taken from the override as-is instead of being merged.
//
// # Quick Start
//
//	agg, err := aggregator.New(
//		aggregator.WithProvenanceField("originalUrl"),
//		aggregator.WithRelativeRoots("sites"),
//		aggregator.WithRequiredSiteFields(aggregator.DefaultRequiredSiteFields...),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result := agg.Aggregate(sources, &override)
//	fmt.Println(len(result.Warnings))
//
// # Repository Classification
//
// A source is either a single repository (a catalog with sites, lives and
// so on) or a multi-repository index that only lists other sources.
// [IsSingleRepository] tells them apart and [ExtractURLs] lists the http(s)
// references of an index, so the caller can fetch and aggregate them. The
// package itself performs no I/O.
package aggregator
