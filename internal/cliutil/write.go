// Package cliutil provides output helpers shared by CLI commands.
package cliutil

import (
	"fmt"
	"io"
	"os"

	"github.com/erraggy/tvmerge/internal/fileutil"
	"github.com/erraggy/tvmerge/internal/pathutil"
)

// Writef writes formatted output to w. Write failures are reported on
// stderr.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil { //nolint:gosec // G705 - CLI tool, not a web server
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// WriteOutput writes data to stdout when output is empty or "-", and
// otherwise to the file output with owner-only permissions. A file that
// would overwrite one of inputs, or that is a symlink, is refused.
func WriteOutput(stdout io.Writer, output string, data []byte, inputs []string) error {
	if output == "" || output == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("writing to stdout: %w", err)
		}
		return nil
	}
	path, err := pathutil.CheckOutput(output, inputs)
	if err != nil {
		return err
	}
	return fileutil.WriteFile(path, data)
}
