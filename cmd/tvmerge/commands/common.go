// Package commands provides CLI command handlers for tvmerge.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/tvmerge"
	"github.com/erraggy/tvmerge/aggregator"
	"github.com/erraggy/tvmerge/document"
	"github.com/erraggy/tvmerge/internal/cliutil"
	"github.com/erraggy/tvmerge/internal/config"
	"github.com/erraggy/tvmerge/internal/fetch"
	"github.com/erraggy/tvmerge/live"
	"github.com/erraggy/tvmerge/mergeerrors"
)

// StdinFilePath is the special input path that reads from stdin.
const StdinFilePath = "-"

// Output streams. Tests replace them.
var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Document output formats for the merge command.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidateDocumentFormat checks a merged-document output format.
func ValidateDocumentFormat(format string) error {
	if format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s", format, FormatJSON, FormatYAML)
	}
	return nil
}

// MarshalDocument renders doc as indented JSON or YAML.
func MarshalDocument(doc document.Document, format string) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(doc)
	}
	data, err := document.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// loadConfig reads the optional config file and applies TVMERGE_*
// variables on top.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readInput returns the raw content of a path, URL or stdin.
func readInput(ctx context.Context, f *fetch.Fetcher, location string) ([]byte, error) {
	if location == StdinFilePath {
		data, err := io.ReadAll(io.LimitReader(Stdin, fetch.DefaultMaxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if int64(len(data)) > fetch.DefaultMaxBytes {
			return nil, fmt.Errorf("reading stdin: %w", fetch.ErrTooLarge)
		}
		return data, nil
	}
	return f.Read(ctx, location)
}

// loadSource reads and decodes one input document.
func loadSource(ctx context.Context, f *fetch.Fetcher, location string) (aggregator.Source, error) {
	data, err := readInput(ctx, f, location)
	if err != nil {
		return aggregator.Source{}, err
	}
	return fetch.Decode(FormatInputPath(location), data)
}

// loadGroups reads a live directory from a path, URL or stdin.
func loadGroups(ctx context.Context, f *fetch.Fetcher, location, livesField string) (live.Groups, live.DecodeStats, error) {
	data, err := readInput(ctx, f, location)
	if err != nil {
		return nil, live.DecodeStats{}, err
	}
	groups, stats, err := live.Decode(data, livesField)
	if err != nil {
		var pe *mergeerrors.ParseError
		if errors.As(err, &pe) && pe.Source == "" {
			pe.Source = FormatInputPath(location)
		}
		return nil, live.DecodeStats{}, err
	}
	return groups, stats, nil
}

// FormatInputPath returns "<stdin>" for StdinFilePath and path otherwise.
func FormatInputPath(path string) string {
	if path == StdinFilePath {
		return "<stdin>"
	}
	return path
}

// outputHeader prints the common diagnostic header to Stderr.
func outputHeader(title string) {
	cliutil.Writef(Stderr, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	cliutil.Writef(Stderr, "tvmerge version: %s\n", tvmerge.Version())
}

// outputStats prints directory totals to Stderr.
func outputStats(groups live.Groups) {
	s := groups.Stats()
	cliutil.Writef(Stderr, "Groups: %d\n", s.Groups)
	cliutil.Writef(Stderr, "Channels: %d\n", s.Channels)
	cliutil.Writef(Stderr, "URLs: %d\n", s.URLs)
}
