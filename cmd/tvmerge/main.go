package main

import (
	"log/slog"
	"os"

	"github.com/agnivade/levenshtein"
	"github.com/erraggy/tvmerge"
	"github.com/erraggy/tvmerge/cmd/tvmerge/commands"
	"github.com/erraggy/tvmerge/internal/cliutil"
)

var handlers = map[string]func([]string) error{
	"merge":       commands.HandleMerge,
	"consolidate": commands.HandleConsolidate,
	"export":      commands.HandleExport,
	"mcp":         commands.HandleMCP,
}

// commandNames lists every command, for typo suggestions.
var commandNames = []string{"merge", "consolidate", "export", "mcp", "version", "help"}

func main() {
	// Pipeline summaries are reported by the commands themselves.
	slog.SetLogLoggerLevel(slog.LevelWarn)
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	command := args[0]
	switch command {
	case "version", "-v", "--version":
		cliutil.Writef(os.Stdout, "tvmerge %s\n", tvmerge.Version())
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	}

	handler, ok := handlers[command]
	if !ok {
		cliutil.Writef(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			cliutil.Writef(os.Stderr, "Did you mean: %s?\n", s)
		}
		cliutil.Writef(os.Stderr, "\n")
		printUsage()
		return 1
	}
	if err := handler(args[1:]); err != nil {
		cliutil.Writef(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// suggestCommand returns the closest command within edit distance 2, or
// "" when nothing is that close.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := levenshtein.ComputeDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func printUsage() {
	w := os.Stderr
	cliutil.Writef(w, "tvmerge - merge TV-box catalogs and consolidate live channels\n\n")
	cliutil.Writef(w, "Usage:\n")
	cliutil.Writef(w, "  tvmerge <command> [flags] [args]\n\n")
	cliutil.Writef(w, "Commands:\n")
	cliutil.Writef(w, "  merge        Merge catalog documents and consolidate their lives\n")
	cliutil.Writef(w, "  consolidate  Consolidate a live directory by URL majority vote\n")
	cliutil.Writef(w, "  export       Convert a live directory to json, yaml, m3u or txt\n")
	cliutil.Writef(w, "  mcp          Serve the tools over the Model Context Protocol (stdio)\n")
	cliutil.Writef(w, "  version      Show version information\n")
	cliutil.Writef(w, "  help         Show this help message\n\n")
	cliutil.Writef(w, "Run 'tvmerge <command> --help' for command flags.\n")
	cliutil.Writef(w, "\nConfiguration: --config file, then TVMERGE_* environment variables.\n")
}
