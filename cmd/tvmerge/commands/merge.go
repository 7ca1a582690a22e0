package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/erraggy/tvmerge/aggregator"
	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/exporter"
	"github.com/erraggy/tvmerge/internal/cliutil"
	"github.com/erraggy/tvmerge/internal/severity"
	"github.com/erraggy/tvmerge/pipeline"
)

// MergeFlags contains flags for the merge command.
type MergeFlags struct {
	Output        string
	Override      string
	Config        string
	Format        string
	M3U           string
	Text          string
	NoExpand      bool
	NoFetch       bool
	NoConsolidate bool
	Quiet         bool
}

// SetupMergeFlags creates and configures a FlagSet for the merge command.
func SetupMergeFlags() (*flag.FlagSet, *MergeFlags) {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	flags := &MergeFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Override, "override", "", "override document applied last; its replace fields win outright")
	fs.StringVar(&flags.Config, "config", "", "YAML configuration file")
	fs.StringVar(&flags.Format, "format", FormatJSON, "merged document format (json, yaml)")
	fs.StringVar(&flags.M3U, "m3u", "", "also write the live directory as an M3U playlist to this path")
	fs.StringVar(&flags.Text, "txt", "", "also write the live directory as a text playlist to this path")
	fs.BoolVar(&flags.NoExpand, "no-expand", false, "treat index documents as plain sources instead of fetching the URLs they list")
	fs.BoolVar(&flags.NoFetch, "no-fetch", false, "do not fetch .m3u/.txt playlists referenced from lives")
	fs.BoolVar(&flags.NoConsolidate, "no-consolidate", false, "keep the live directory as collected")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: suppress diagnostic messages (for pipelining)")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: suppress diagnostic messages (for pipelining)")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: tvmerge merge [flags] <file|url|-> [file|url...]\n\n")
		cliutil.Writef(fs.Output(), "Merge catalog documents in order and consolidate their live channels.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  tvmerge merge a.json b.json > merged.json\n")
		cliutil.Writef(fs.Output(), "  tvmerge merge --override local.json -o merged.json https://example.com/index.json\n")
		cliutil.Writef(fs.Output(), "  tvmerge merge --m3u lives.m3u --txt lives.txt -o merged.json a.json b.yaml\n")
		cliutil.Writef(fs.Output(), "\nNotes:\n")
		cliutil.Writef(fs.Output(), "  - Later documents win on conflicting scalar fields\n")
		cliutil.Writef(fs.Output(), "  - An input without catalog fields is an index; the URLs it lists are merged instead\n")
		cliutil.Writef(fs.Output(), "  - Files are written with restrictive permissions (0600) and never over an input\n")
	}

	return fs, flags
}

// HandleMerge executes the merge command.
func HandleMerge(args []string) error {
	fs, flags := SetupMergeFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("merge command requires at least one input")
	}
	if err := ValidateDocumentFormat(flags.Format); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.Config)
	if err != nil {
		return err
	}
	if flags.NoConsolidate {
		cfg.Consolidate.Disabled = true
	}
	pcfg, err := cfg.PipelineConfig()
	if err != nil {
		return err
	}
	fetcher := cfg.Fetcher(false)
	if !flags.NoFetch {
		pcfg.Resolver = fetcher
	}
	p, err := pipeline.New(pcfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	inputs := fs.Args()
	startTime := time.Now()

	var sources []aggregator.Source
	var fetchErrs []error
	for _, in := range inputs {
		src, err := loadSource(ctx, fetcher, in)
		if err != nil {
			return fmt.Errorf("loading %s: %w", FormatInputPath(in), err)
		}
		if flags.NoExpand {
			sources = append(sources, src)
			continue
		}
		expanded, errs := fetcher.Expand(ctx, src, cfg.Aggregate.RepositoryMarkers)
		sources = append(sources, expanded...)
		fetchErrs = append(fetchErrs, errs...)
	}

	var override *document.Document
	if flags.Override != "" {
		src, err := loadSource(ctx, fetcher, flags.Override)
		if err != nil {
			return fmt.Errorf("loading override %s: %w", flags.Override, err)
		}
		override = &src.Document
	}

	result, err := p.Run(ctx, sources, override)
	if err != nil {
		return fmt.Errorf("merging: %w", err)
	}
	totalTime := time.Since(startTime)

	allInputs := append([]string{flags.Override, flags.Config}, inputs...)
	data, err := MarshalDocument(result.Document, flags.Format)
	if err != nil {
		return fmt.Errorf("marshaling merged document: %w", err)
	}
	if err := cliutil.WriteOutput(Stdout, flags.Output, data, allInputs); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := writeExport(result, flags.M3U, exporter.FormatPlaylist, allInputs); err != nil {
		return err
	}
	if err := writeExport(result, flags.Text, exporter.FormatText, allInputs); err != nil {
		return err
	}

	if !flags.Quiet {
		printMergeReport(flags, result, fetchErrs, totalTime)
	}
	return nil
}

// writeExport writes the live directory to path in format. An empty path
// is a no-op.
func writeExport(result *pipeline.Result, path string, format exporter.Format, inputs []string) error {
	if path == "" {
		return nil
	}
	if path == StdinFilePath {
		return fmt.Errorf("--%s requires a file path", format.Extension()[1:])
	}
	text, err := exporter.Export(result.Lives, format)
	if err != nil {
		return err
	}
	if err := cliutil.WriteOutput(Stdout, path, []byte(text), inputs); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func printMergeReport(flags *MergeFlags, result *pipeline.Result, fetchErrs []error, totalTime time.Duration) {
	outputHeader("TV Catalog Merger")
	agg := result.Aggregate
	cliutil.Writef(Stderr, "Sources merged: %d\n", agg.Merged)
	if agg.Skipped > 0 {
		cliutil.Writef(Stderr, "Sources skipped: %d\n", agg.Skipped)
	}
	if len(agg.Replaced) > 0 {
		cliutil.Writef(Stderr, "Replaced by override: %v\n", agg.Replaced)
	}
	if result.LivesReplaced {
		cliutil.Writef(Stderr, "Live directory: taken from override\n")
	}
	outputStats(result.Lives)
	if result.Consolidation != nil {
		s := result.Consolidation.Stats
		cliutil.Writef(Stderr, "Regrouped singletons: %d\n", s.Regrouped)
	}
	if len(result.Rejected) > 0 {
		cliutil.Writef(Stderr, "Rejected live entries: %d\n", len(result.Rejected))
	}
	if result.Converted > 0 {
		cliutil.Writef(Stderr, "Converted stream entries: %d\n", result.Converted)
	}
	if result.Imported > 0 {
		cliutil.Writef(Stderr, "Imported playlist groups: %d\n", result.Imported)
	}
	for _, u := range result.Unresolved {
		cliutil.Writef(Stderr, "Unresolved playlist: %s\n", u)
	}
	cliutil.Writef(Stderr, "Total Time: %v\n\n", totalTime)

	// Info notices such as replaced fields are already reported above.
	mergeWarnings := agg.Warnings.AtLeast(severity.SeverityWarning)
	warnings := len(mergeWarnings) + len(fetchErrs)
	if warnings > 0 {
		cliutil.Writef(Stderr, "Warnings (%d):\n", warnings)
		for _, w := range mergeWarnings {
			cliutil.Writef(Stderr, "  - %s\n", w)
		}
		for _, err := range fetchErrs {
			cliutil.Writef(Stderr, "  - %v\n", err)
		}
		cliutil.Writef(Stderr, "\n")
	}

	if flags.Output != "" {
		cliutil.Writef(Stderr, "Output written to: %s\n", flags.Output)
	}
}
