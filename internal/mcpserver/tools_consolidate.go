package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/tvmerge/consolidator"
	"github.com/erraggy/tvmerge/exporter"
	"github.com/erraggy/tvmerge/live"
)

type directoryInput struct {
	Lives    docInput `json:"lives"              jsonschema:"The live directory: a JSON/YAML group list, a catalog with a lives field, or an M3U/text playlist"`
	Format   string   `json:"format,omitempty"   jsonschema:"Output format: json, yaml, m3u or txt (default: configured export format)"`
	Output   string   `json:"output,omitempty"   jsonschema:"File path to write the result to. When set the result is not returned inline."`
	Sanitize bool     `json:"sanitize,omitempty" jsonschema:"Strip noise tokens from group and channel labels first"`
}

type consolidateInput struct {
	Lives    docInput `json:"lives"              jsonschema:"The live directory: a JSON/YAML group list, a catalog with a lives field, or an M3U/text playlist"`
	Format   string   `json:"format,omitempty"   jsonschema:"Output format: json, yaml, m3u or txt (default: configured export format)"`
	Output   string   `json:"output,omitempty"   jsonschema:"File path to write the result to. When set the result is not returned inline."`
	Sanitize bool     `json:"sanitize,omitempty" jsonschema:"Strip noise tokens from group and channel labels first"`
	Unify    bool     `json:"unify,omitempty"    jsonschema:"Move every channel into the group most of its URLs voted for"`
	Exclude  bool     `json:"exclude,omitempty"  jsonschema:"Keep numbered channels (episodes) in their original groups"`
}

type directoryOutput struct {
	Format         string `json:"format"`
	Groups         int    `json:"groups"`
	Channels       int    `json:"channels"`
	URLs           int    `json:"urls"`
	Regrouped      int    `json:"regrouped,omitempty"`
	Passthrough    int    `json:"passthrough,omitempty"`
	SkippedEntries int    `json:"skipped_entries,omitempty"`
	WrittenTo      string `json:"written_to,omitempty"`
	Content        string `json:"content,omitempty"`
	Summary        string `json:"summary"`
}

func (s *toolServer) handleConsolidate(ctx context.Context, _ *mcp.CallToolRequest, input consolidateInput) (*mcp.CallToolResult, directoryOutput, error) {
	cfg := *s.cfg
	if input.Unify {
		cfg.Consolidate.UnifyChannels = true
	}
	if input.Exclude {
		cfg.Consolidate.Exclude.Enabled = true
	}
	cons, err := consolidator.New(cfg.ConsolidatorConfig())
	if err != nil {
		return errResult(err), directoryOutput{}, nil
	}
	return s.handleDirectory(ctx, directoryInput{
		Lives:    input.Lives,
		Format:   input.Format,
		Output:   input.Output,
		Sanitize: input.Sanitize,
	}, cons)
}

func (s *toolServer) handleExport(ctx context.Context, _ *mcp.CallToolRequest, input directoryInput) (*mcp.CallToolResult, directoryOutput, error) {
	return s.handleDirectory(ctx, input, nil)
}

// handleDirectory decodes, optionally sanitizes and consolidates, then
// renders a live directory. A nil cons exports the directory unchanged.
func (s *toolServer) handleDirectory(ctx context.Context, input directoryInput, cons *consolidator.Consolidator) (*mcp.CallToolResult, directoryOutput, error) {
	name := input.Format
	if name == "" {
		name = s.cfg.Export.Format
	}
	format, err := exporter.ParseFormat(name)
	if err != nil {
		return errResult(err), directoryOutput{}, nil
	}

	groups, decodeStats, err := s.groups(ctx, input.Lives)
	if err != nil {
		return errResult(err), directoryOutput{}, nil
	}
	if input.Sanitize {
		groupSan, channelSan, err := s.cfg.Sanitizers()
		if err != nil {
			return errResult(err), directoryOutput{}, nil
		}
		groups = groups.Sanitize(groupSan, channelSan)
	}

	output := directoryOutput{
		Format:         string(format),
		SkippedEntries: decodeStats.SkippedGroups + decodeStats.SkippedChannels + decodeStats.SkippedURLs,
	}
	if cons != nil {
		result := cons.Consolidate(groups)
		groups = result.Groups
		output.Regrouped = result.Stats.Regrouped
		output.Passthrough = result.Stats.Passthrough
	}
	if groups == nil {
		groups = live.Groups{}
	}

	text, err := exporter.Export(groups, format)
	if err != nil {
		return errResult(err), directoryOutput{}, nil
	}
	stats := groups.Stats()
	output.Groups, output.Channels, output.URLs = stats.Groups, stats.Channels, stats.URLs

	if input.Output != "" {
		var inputs []string
		if input.Lives.File != "" {
			inputs = []string{input.Lives.File}
		}
		written, err := writeOutput(input.Output, []byte(text), inputs)
		if err != nil {
			return errResult(err), directoryOutput{}, nil
		}
		output.WrittenTo = written
	} else {
		output.Content = text
	}

	verb := "Exported"
	if cons != nil {
		verb = "Consolidated"
	}
	output.Summary = fmt.Sprintf("%s %s, %s and %s as %s.", verb,
		formatCount(stats.Groups, "group"),
		formatCount(stats.Channels, "channel"),
		formatCount(stats.URLs, "URL"),
		format)
	return nil, output, nil
}
