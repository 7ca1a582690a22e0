package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/tvmerge/aggregator"
	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/internal/fileutil"
	"github.com/erraggy/tvmerge/internal/pathutil"
	"github.com/erraggy/tvmerge/pipeline"
	"go.yaml.in/yaml/v4"
)

type mergeInput struct {
	Sources           []docInput `json:"sources"                      jsonschema:"Catalog documents to merge, in order. Later sources win conflicting scalar fields."`
	Override          *docInput  `json:"override,omitempty"           jsonschema:"Optional override document applied last. Its lives field replaces the merged one outright."`
	Expand            bool       `json:"expand,omitempty"             jsonschema:"Replace index documents (documents listing other catalog URLs) with the catalogs they list"`
	FetchPlaylists    bool       `json:"fetch_playlists,omitempty"    jsonschema:"Fetch .m3u/.txt playlists referenced from lives and import their channels"`
	SkipConsolidation bool       `json:"skip_consolidation,omitempty" jsonschema:"Keep the live directory as collected instead of consolidating it"`
	Format            string     `json:"format,omitempty"             jsonschema:"Format of the returned document: json (default) or yaml"`
	Output            string     `json:"output,omitempty"             jsonschema:"File path to write the merged document to. When set the document is not returned inline."`
}

type mergeOutput struct {
	SourceCount  int      `json:"source_count"`
	Merged       int      `json:"merged"`
	Skipped      int      `json:"skipped,omitempty"`
	Replaced     []string `json:"replaced,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	WarningCount int      `json:"warning_count"`
	Rejected     int      `json:"rejected,omitempty"`
	Converted    int      `json:"converted,omitempty"`
	Imported     int      `json:"imported,omitempty"`
	Unresolved   []string `json:"unresolved,omitempty"`
	Groups       int      `json:"groups"`
	Channels     int      `json:"channels"`
	URLs         int      `json:"urls"`
	Regrouped    int      `json:"regrouped,omitempty"`
	WrittenTo    string   `json:"written_to,omitempty"`
	Document     string   `json:"document,omitempty"`
	Summary      string   `json:"summary"`
}

func (s *toolServer) handleMerge(ctx context.Context, _ *mcp.CallToolRequest, input mergeInput) (*mcp.CallToolResult, mergeOutput, error) {
	if len(input.Sources) == 0 {
		return errResult(fmt.Errorf("at least one source is required")), mergeOutput{}, nil
	}
	if len(input.Sources) > s.cfg.MCP.MaxSources {
		return errResult(fmt.Errorf("too many sources: %d exceeds maximum %d; set TVMERGE_MCP_MAX_SOURCES to increase",
			len(input.Sources), s.cfg.MCP.MaxSources)), mergeOutput{}, nil
	}
	format := input.Format
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "yaml" {
		return errResult(fmt.Errorf("invalid format %q: must be json or yaml", format)), mergeOutput{}, nil
	}

	pcfg, err := s.cfg.PipelineConfig()
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}
	if input.FetchPlaylists {
		pcfg.Resolver = s.fetcher
	}
	if input.SkipConsolidation {
		pcfg.SkipConsolidation = true
	}
	p, err := pipeline.New(pcfg)
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}

	sources := makeSlice[aggregator.Source](len(input.Sources))
	var warnings []string
	for i, in := range input.Sources {
		src, err := s.source(ctx, in)
		if err != nil {
			return errResult(fmt.Errorf("source %d (%s): %w", i, in.name(), err)), mergeOutput{}, nil
		}
		if !input.Expand {
			sources = append(sources, src)
			continue
		}
		expanded, errs := s.fetcher.Expand(ctx, src, s.cfg.Aggregate.RepositoryMarkers)
		sources = append(sources, expanded...)
		for _, e := range errs {
			warnings = append(warnings, sanitizeError(e))
		}
	}

	var override *document.Document
	if input.Override != nil {
		src, err := s.source(ctx, *input.Override)
		if err != nil {
			return errResult(fmt.Errorf("override: %w", err)), mergeOutput{}, nil
		}
		override = &src.Document
	}

	result, err := p.Run(ctx, sources, override)
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}

	agg := result.Aggregate
	warnings = append(agg.Warnings.Strings(), warnings...)
	for _, re := range result.RemoteErrors {
		warnings = append(warnings, sanitizeError(re))
	}
	stats := result.Lives.Stats()
	output := mergeOutput{
		SourceCount:  len(sources),
		Merged:       agg.Merged,
		Skipped:      agg.Skipped,
		Replaced:     agg.Replaced,
		Warnings:     warnings,
		WarningCount: len(warnings),
		Rejected:     len(result.Rejected),
		Converted:    result.Converted,
		Imported:     result.Imported,
		Unresolved:   result.Unresolved,
		Groups:       stats.Groups,
		Channels:     stats.Channels,
		URLs:         stats.URLs,
	}
	if result.Consolidation != nil {
		output.Regrouped = result.Consolidation.Stats.Regrouped
	}

	data, err := marshalDocument(result.Document, format)
	if err != nil {
		return errResult(err), mergeOutput{}, nil
	}
	if input.Output != "" {
		written, err := writeOutput(input.Output, data, mergeInputPaths(input))
		if err != nil {
			return errResult(err), mergeOutput{}, nil
		}
		output.WrittenTo = written
	} else {
		output.Document = string(data)
	}

	output.Summary = fmt.Sprintf("Merged %s into %s, %s and %s.",
		formatCount(agg.Merged, "source"),
		formatCount(stats.Groups, "group"),
		formatCount(stats.Channels, "channel"),
		formatCount(stats.URLs, "URL"))
	if len(warnings) > 0 {
		output.Summary += fmt.Sprintf(" %s.", formatCount(len(warnings), "warning"))
	}
	return nil, output, nil
}

func marshalDocument(doc document.Document, format string) ([]byte, error) {
	if format == "yaml" {
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshaling yaml: %w", err)
		}
		return data, nil
	}
	data, err := document.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling json: %w", err)
	}
	return append(data, '\n'), nil
}

func mergeInputPaths(input mergeInput) []string {
	paths := makeSlice[string](len(input.Sources) + 1)
	for _, in := range input.Sources {
		if in.File != "" {
			paths = append(paths, in.File)
		}
	}
	if input.Override != nil && input.Override.File != "" {
		paths = append(paths, input.Override.File)
	}
	return paths
}

// writeOutput writes data to output, refusing symlinks and paths that
// would overwrite one of inputs. It returns the cleaned path.
func writeOutput(output string, data []byte, inputs []string) (string, error) {
	cleaned, err := pathutil.CheckOutput(output, inputs)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFile(cleaned, data); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return cleaned, nil
}
