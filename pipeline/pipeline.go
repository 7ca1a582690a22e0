// Package pipeline runs the full catalog merge: aggregate the sources,
// validate the merged "lives" directory, import referenced playlists,
// sanitize labels and consolidate channels.
//
// Only playlist resolution touches the outside world, through the
// [Resolver] supplied by the caller. Without one, playlist references are
// reported in [Result.Unresolved] and left out of the directory.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/erraggy/tvmerge/aggregator"
	"github.com/erraggy/tvmerge/consolidator"
	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/live"
)

// pipelineLogger is used for run summaries.
// Tests can replace this with a discard logger.
var pipelineLogger = slog.Default()

// DefaultLivesField is the catalog field holding the live directory.
const DefaultLivesField = "lives"

// Resolver fetches the content of a remote playlist.
type Resolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, url string) (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Config wires the stages together. Nil stages use package defaults.
type Config struct {
	Aggregator       *aggregator.Aggregator
	Consolidator     *consolidator.Consolidator
	GroupSanitizer   live.LabelSanitizer
	ChannelSanitizer live.LabelSanitizer
	Resolver         Resolver
	// LivesField names the live directory field. Empty means "lives".
	LivesField string
	// SkipConsolidation keeps the validated directory as collected.
	SkipConsolidation bool
}

// Pipeline runs merges. It is safe for concurrent use when its Resolver is.
type Pipeline struct {
	cfg Config
}

// New creates a Pipeline from cfg.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Aggregator == nil {
		agg, err := aggregator.New()
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		cfg.Aggregator = agg
	}
	if cfg.Consolidator == nil {
		cfg.Consolidator = consolidator.Default()
	}
	if cfg.LivesField == "" {
		cfg.LivesField = DefaultLivesField
	}
	return &Pipeline{cfg: cfg}, nil
}

// RemoteError records a playlist that could not be resolved.
type RemoteError struct {
	URL string
	Err error
}

func (e RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

// Result is the outcome of a run.
type Result struct {
	// Document is the merged catalog with the final live directory.
	Document document.Document
	// Lives is the final live directory.
	Lives live.Groups
	// Aggregate describes the source fold.
	Aggregate *aggregator.Result
	// LivesReplaced is true when the override supplied the directory. It
	// is then used verbatim: not validated, sanitized or consolidated.
	LivesReplaced bool
	// Rejected lists invalid directory entries.
	Rejected []live.Rejection
	// Converted counts .m3u8 references turned into groups.
	Converted int
	// Imported counts groups parsed from resolved playlists.
	Imported int
	// Unresolved lists playlist references that were not imported.
	Unresolved []string
	// RemoteErrors lists failed playlist resolutions.
	RemoteErrors []RemoteError
	// Consolidation is nil when consolidation was skipped.
	Consolidation *consolidator.Result
}

// Run merges sources with an optional override. The only error returned is
// ctx's, when it ends while playlists are being resolved.
func (p *Pipeline) Run(ctx context.Context, sources []aggregator.Source, override *document.Document) (*Result, error) {
	agg := p.cfg.Aggregator.Aggregate(sources, override)
	result := &Result{Aggregate: agg, Document: agg.Document}

	field := p.cfg.LivesField
	if slices.Contains(agg.Replaced, field) {
		result.LivesReplaced = true
		doc, _ := agg.Document.Get(field)
		result.Lives, _ = live.FromDocument(doc)
		p.logSummary(result)
		return result, nil
	}

	livesDoc, present := agg.Document.Get(field)
	norm := live.Normalize(livesDoc)
	result.Rejected = norm.Rejected
	result.Converted = norm.Converted

	imported := make([]live.Groups, len(norm.Remote))
	for i, ref := range norm.Remote {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		if p.cfg.Resolver == nil {
			result.Unresolved = append(result.Unresolved, ref.URL)
			continue
		}
		content, err := p.cfg.Resolver.Resolve(ctx, ref.URL)
		if err != nil {
			pipelineLogger.Warn("failed to resolve playlist", "url", ref.URL, "error", err)
			result.RemoteErrors = append(result.RemoteErrors, RemoteError{URL: ref.URL, Err: err})
			result.Unresolved = append(result.Unresolved, ref.URL)
			continue
		}
		imported[i] = live.ParsePlaylist(content)
		result.Imported += len(imported[i])
	}

	groups := norm.Splice(imported)
	groups = groups.Sanitize(p.cfg.GroupSanitizer, p.cfg.ChannelSanitizer)
	if p.cfg.SkipConsolidation {
		result.Lives = groups
	} else {
		result.Consolidation = p.cfg.Consolidator.Consolidate(groups)
		result.Lives = result.Consolidation.Groups
	}
	if result.Lives == nil {
		result.Lives = live.Groups{}
	}

	if present || len(result.Lives) > 0 {
		m, _ := agg.Document.AsMap()
		m = m.Clone()
		m.Set(field, result.Lives.ToDocument())
		result.Document = document.Object(m)
	}

	p.logSummary(result)
	return result, nil
}

func (p *Pipeline) logSummary(result *Result) {
	stats := result.Lives.Stats()
	pipelineLogger.Info("merge complete",
		"sources", result.Aggregate.Merged,
		"skipped_sources", result.Aggregate.Skipped,
		"warnings", len(result.Aggregate.Warnings),
		"lives_replaced", result.LivesReplaced,
		"rejected", len(result.Rejected),
		"imported", result.Imported,
		"unresolved", len(result.Unresolved),
		"groups", stats.Groups,
		"channels", stats.Channels,
		"urls", stats.URLs)
}
