package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/erraggy/tvmerge/consolidator"
	"github.com/erraggy/tvmerge/exporter"
	"github.com/erraggy/tvmerge/internal/cliutil"
	"github.com/erraggy/tvmerge/live"
)

// DirectoryFlags contains flags for the consolidate and export commands.
type DirectoryFlags struct {
	Output   string
	Config   string
	Format   string
	Sanitize bool
	Unify    bool
	Exclude  bool
	Quiet    bool
}

// SetupConsolidateFlags creates and configures a FlagSet for the
// consolidate command.
func SetupConsolidateFlags() (*flag.FlagSet, *DirectoryFlags) {
	fs, flags := setupDirectoryFlags("consolidate")
	fs.BoolVar(&flags.Unify, "unify", false, "move every channel into the group most of its URLs voted for")
	fs.BoolVar(&flags.Exclude, "exclude", false, "keep numbered channels (episodes) in their original groups")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: tvmerge consolidate [flags] <file|url|->\n\n")
		cliutil.Writef(fs.Output(), "Place every stream URL under one channel of one group, by majority vote.\n\n")
		cliutil.Writef(fs.Output(), "The input is a JSON/YAML list of groups, a catalog with a lives field,\n")
		cliutil.Writef(fs.Output(), "or an M3U/text playlist.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  tvmerge consolidate lives.json\n")
		cliutil.Writef(fs.Output(), "  tvmerge consolidate --format m3u -o lives.m3u playlist.txt\n")
		cliutil.Writef(fs.Output(), "  tvmerge merge -q a.json b.json | tvmerge consolidate --format txt -\n")
	}
	return fs, flags
}

// SetupExportFlags creates and configures a FlagSet for the export
// command.
func SetupExportFlags() (*flag.FlagSet, *DirectoryFlags) {
	fs, flags := setupDirectoryFlags("export")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: tvmerge export [flags] <file|url|->\n\n")
		cliutil.Writef(fs.Output(), "Convert a live directory between formats without reordering it.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nFormats:\n")
		cliutil.Writef(fs.Output(), "  json       JSON list of groups\n")
		cliutil.Writef(fs.Output(), "  yaml, yml  YAML list of groups\n")
		cliutil.Writef(fs.Output(), "  m3u        extended M3U playlist\n")
		cliutil.Writef(fs.Output(), "  txt        \"<group>,#genre#\" text playlist\n")
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  tvmerge export --format m3u lives.json > lives.m3u\n")
		cliutil.Writef(fs.Output(), "  tvmerge export --format json -o lives.json playlist.m3u\n")
	}
	return fs, flags
}

func setupDirectoryFlags(name string) (*flag.FlagSet, *DirectoryFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	flags := &DirectoryFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Config, "config", "", "YAML configuration file")
	fs.StringVar(&flags.Format, "format", "", "output format: json, yaml, m3u, txt (default: config export.format)")
	fs.BoolVar(&flags.Sanitize, "sanitize", false, "strip noise tokens from group and channel labels first")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: suppress diagnostic messages (for pipelining)")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: suppress diagnostic messages (for pipelining)")
	return fs, flags
}

// HandleConsolidate executes the consolidate command.
func HandleConsolidate(args []string) error {
	return handleDirectory("consolidate", SetupConsolidateFlags, args, true)
}

// HandleExport executes the export command.
func HandleExport(args []string) error {
	return handleDirectory("export", SetupExportFlags, args, false)
}

func handleDirectory(name string, setup func() (*flag.FlagSet, *DirectoryFlags), args []string, consolidate bool) error {
	fs, flags := setup()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%s command requires exactly one input", name)
	}

	cfg, err := loadConfig(flags.Config)
	if err != nil {
		return err
	}
	if flags.Format == "" {
		flags.Format = cfg.Export.Format
	}
	format, err := exporter.ParseFormat(flags.Format)
	if err != nil {
		return err
	}
	if flags.Unify {
		cfg.Consolidate.UnifyChannels = true
	}
	if flags.Exclude {
		cfg.Consolidate.Exclude.Enabled = true
	}

	input := fs.Arg(0)
	groups, decodeStats, err := loadGroups(context.Background(), cfg.Fetcher(false), input, cfg.Aggregate.LivesField)
	if err != nil {
		return fmt.Errorf("loading %s: %w", FormatInputPath(input), err)
	}

	if flags.Sanitize {
		groupSan, channelSan, err := cfg.Sanitizers()
		if err != nil {
			return err
		}
		groups = groups.Sanitize(groupSan, channelSan)
	}

	var regrouped int
	if consolidate {
		cons, err := consolidator.New(cfg.ConsolidatorConfig())
		if err != nil {
			return err
		}
		result := cons.Consolidate(groups)
		groups = result.Groups
		regrouped = result.Stats.Regrouped
	}

	text, err := exporter.Export(groups, format)
	if err != nil {
		return err
	}
	if err := cliutil.WriteOutput(Stdout, flags.Output, []byte(text), []string{input, flags.Config}); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if !flags.Quiet {
		printDirectoryReport(name, input, format, groups, decodeStats, regrouped, consolidate)
	}
	return nil
}

func printDirectoryReport(name, input string, format exporter.Format, groups live.Groups, ds live.DecodeStats, regrouped int, consolidated bool) {
	outputHeader("TV Live Directory: " + name)
	cliutil.Writef(Stderr, "Input: %s\n", FormatInputPath(input))
	cliutil.Writef(Stderr, "Format: %s\n", format)
	outputStats(groups)
	if consolidated {
		cliutil.Writef(Stderr, "Regrouped singletons: %d\n", regrouped)
	}
	if skipped := ds.SkippedGroups + ds.SkippedChannels + ds.SkippedURLs; skipped > 0 {
		cliutil.Writef(Stderr, "Skipped malformed entries: %d\n", skipped)
	}
}
