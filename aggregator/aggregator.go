package aggregator

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/merger"
)

// aggregatorLogger is used for diagnostics during aggregation.
// Tests can replace this with a discard logger.
var aggregatorLogger = slog.Default()

// DefaultReplaceFields are taken wholesale from an override document.
var DefaultReplaceFields = []string{"lives"}

// DefaultRequiredSiteFields must all be present on a site entry.
var DefaultRequiredSiteFields = []string{"key", "name", "api", "type"}

// DefaultPruneFields are top-level fields that player clients ignore or
// misbehave on when they appear in a merged catalog.
var DefaultPruneFields = []string{
	"flags", "warningText", "doh", "logo", "urls", "notice",
	"disabled_wallpaper", "storeHouse", "code", "msg", "page", "pagecount",
	"limit", "total", "list", "class", "iptv", "channel", "drive", "analyze",
	"setting", "analyzeHistory", "history", "searchHistory", "star", "homepage",
	"homeLogo", "adblock", "recommend", "rating", "pullWord", "subtitle",
}

// Source is one input document and where it came from.
type Source struct {
	// Name is the URL or path of the source. It may be empty.
	Name string
	// Document is the decoded source.
	Document document.Document
}

// Result contains the merged document and metadata about the fold.
type Result struct {
	// Document is the merged catalog. It is always a map.
	Document document.Document
	// Merged is the number of sources folded into the result.
	Merged int
	// Skipped is the number of sources ignored because they were not maps.
	Skipped int
	// Replaced lists the fields taken wholesale from the override.
	Replaced []string
	// Warnings contains non-fatal issues in the order they were found.
	Warnings merger.Warnings
}

// Aggregator folds sources into one document. It is safe for concurrent use.
type Aggregator struct {
	merger             *merger.Merger
	replaceFields      []string
	provenanceField    string
	relativeRoots      []string
	pruneFields        []string
	requiredSiteFields []string
}

// Option is a function that configures an Aggregator.
type Option func(*Aggregator) error

// WithMerger sets the merger used for every fold step.
func WithMerger(m *merger.Merger) Option {
	return func(a *Aggregator) error {
		if m == nil {
			return fmt.Errorf("merger is nil")
		}
		a.merger = m
		return nil
	}
}

// WithReplaceFields sets the top-level fields an override replaces instead
// of merging. Passing no fields merges the override completely.
func WithReplaceFields(fields ...string) Option {
	return func(a *Aggregator) error {
		a.replaceFields = slices.Clone(fields)
		return nil
	}
}

// WithProvenanceField records each source name in field before merging.
func WithProvenanceField(field string) Option {
	return func(a *Aggregator) error {
		a.provenanceField = field
		return nil
	}
}

// WithRelativeRoots resolves "./" paths under the given top-level fields
// against the source URL.
func WithRelativeRoots(fields ...string) Option {
	return func(a *Aggregator) error {
		a.relativeRoots = slices.Clone(fields)
		return nil
	}
}

// WithPruneFields removes the given top-level fields from the result.
func WithPruneFields(fields ...string) Option {
	return func(a *Aggregator) error {
		a.pruneFields = slices.Clone(fields)
		return nil
	}
}

// WithRequiredSiteFields drops site entries missing any of fields.
func WithRequiredSiteFields(fields ...string) Option {
	return func(a *Aggregator) error {
		a.requiredSiteFields = slices.Clone(fields)
		return nil
	}
}

// New creates an Aggregator. Without options it uses the default merger and
// replaces DefaultReplaceFields from overrides.
func New(opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		merger:        merger.Default(),
		replaceFields: slices.Clone(DefaultReplaceFields),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("aggregator: %w", err)
		}
	}
	return a, nil
}

// Aggregate folds sources in order and applies override last when it is
// not nil.
func (a *Aggregator) Aggregate(sources []Source, override *document.Document) *Result {
	result := &Result{}
	acc := document.Object(document.NewMap(0))

	for i, src := range sources {
		if src.Document.Kind() != document.KindMap {
			result.Skipped++
			result.Warnings = append(result.Warnings,
				merger.NewMalformedElementWarning(sourcePath(i, src.Name), "map", src.Document.Kind().String()))
			continue
		}
		doc := a.prepare(src)
		merged, warnings := a.merger.MergeWithReport(acc, doc)
		acc = merged
		result.Merged++
		result.Warnings = append(result.Warnings, warnings...)
	}

	if override != nil {
		acc = a.applyOverride(acc, *override, result)
	}

	acc = a.cleanup(acc, result)
	result.Document = acc

	aggregatorLogger.Debug("aggregated sources",
		"merged", result.Merged, "skipped", result.Skipped,
		"replaced", result.Replaced, "warnings", len(result.Warnings))
	return result
}

func sourcePath(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("sources[%d]", i)
	}
	return fmt.Sprintf("sources[%d](%s)", i, name)
}

// prepare applies the per-source rewrites configured on a.
func (a *Aggregator) prepare(src Source) document.Document {
	doc := src.Document
	if a.provenanceField != "" && src.Name != "" {
		doc = withProvenance(doc, a.provenanceField, src.Name)
	}
	if len(a.relativeRoots) > 0 {
		if base := relativeBase(doc, a.provenanceField, src.Name); base != nil {
			doc = resolveRelative(doc, a.relativeRoots, base)
		}
	}
	return doc
}

func (a *Aggregator) applyOverride(acc, override document.Document, result *Result) document.Document {
	om, ok := override.AsMap()
	if !ok {
		result.Warnings = append(result.Warnings,
			merger.NewMalformedElementWarning("override", "map", override.Kind().String()))
		return acc
	}

	rest := om.Clone()
	var replaced []string
	for _, field := range a.replaceFields {
		if rest.Delete(field) {
			replaced = append(replaced, field)
		}
	}

	merged, warnings := a.merger.MergeWithReport(acc, document.Object(rest))
	result.Warnings = append(result.Warnings, warnings...)
	if len(replaced) == 0 {
		return merged
	}

	out, _ := merged.AsMap()
	out = out.Clone()
	for _, field := range replaced {
		v, _ := om.Get(field)
		out.Set(field, v)
		result.Warnings = append(result.Warnings, merger.NewFieldReplacedWarning(field))
	}
	result.Replaced = replaced
	return document.Object(out)
}

// cleanup validates site entries and prunes fields on the merged document.
func (a *Aggregator) cleanup(acc document.Document, result *Result) document.Document {
	if len(a.requiredSiteFields) == 0 && len(a.pruneFields) == 0 {
		return acc
	}
	m, _ := acc.AsMap()
	m = m.Clone()

	if len(a.requiredSiteFields) > 0 {
		if video, ok := m.Get("video"); ok && video.Kind() == document.KindMap {
			if sites, ok := video.Get("sites"); ok {
				vm, _ := video.AsMap()
				vm = vm.Clone()
				vm.Set("sites", a.filterSites("$.video.sites", sites, result))
				m.Set("video", document.Object(vm))
			}
		} else if sites, ok := m.Get("sites"); ok {
			m.Set("sites", a.filterSites("$.sites", sites, result))
		}
	}

	for _, field := range a.pruneFields {
		m.Delete(field)
	}
	return document.Object(m)
}

func (a *Aggregator) filterSites(path string, sites document.Document, result *Result) document.Document {
	items, ok := sites.AsList()
	if !ok {
		result.Warnings = append(result.Warnings,
			merger.NewMalformedElementWarning(path, "list", sites.Kind().String()))
		return document.List()
	}
	kept := make([]document.Document, 0, len(items))
	for i, site := range items {
		if missing := missingField(site, a.requiredSiteFields); missing != "" {
			result.Warnings = append(result.Warnings,
				merger.NewEntryDroppedWarning(fmt.Sprintf("%s[%d]", path, i), fmt.Sprintf("site is missing required field %q", missing)))
			continue
		}
		kept = append(kept, site)
	}
	return document.List(kept...)
}

// missingField returns the first required field absent from site, or
// "(not a map)" when site is not a map.
func missingField(site document.Document, required []string) string {
	m, ok := site.AsMap()
	if !ok {
		return "(not a map)"
	}
	for _, field := range required {
		if !m.Has(field) {
			return field
		}
	}
	return ""
}
