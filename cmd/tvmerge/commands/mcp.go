package commands

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/tvmerge/internal/cliutil"
	"github.com/erraggy/tvmerge/internal/mcpserver"
)

// SetupMCPFlags creates the FlagSet for the mcp command.
func SetupMCPFlags() (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: tvmerge mcp [flags]\n\n")
		cliutil.Writef(fs.Output(), "Serve the merge, consolidate and export tools over MCP on stdio.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nSettings come from the config file, then TVMERGE_* environment variables.\n")
	}
	return fs, configPath
}

// HandleMCP runs the MCP server until stdin closes or the process is
// interrupted.
func HandleMCP(args []string) error {
	fs, configPath := SetupMCPFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx, cfg)
}
