// Package pathutil validates filesystem paths the CLI and MCP server write
// to.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// SanitizeOutputPath cleans path and resolves it to an absolute path.
// Existing symlinks are rejected so output cannot be redirected; a path
// that does not exist yet is accepted.
func SanitizeOutputPath(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("pathutil: cannot resolve absolute path: %w", err)
	}

	info, err := os.Lstat(abs)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("pathutil: refusing to write to symlink: %s", abs)
		}
	case os.IsNotExist(err):
	default:
		return "", fmt.Errorf("pathutil: cannot stat path: %w", err)
	}
	return abs, nil
}

// CheckOutput sanitizes output and rejects it when it names one of inputs.
// Remote inputs and the stdin marker never collide with a file.
func CheckOutput(output string, inputs []string) (string, error) {
	abs, err := SanitizeOutputPath(output)
	if err != nil {
		return "", err
	}
	outInfo, statErr := os.Stat(abs)
	for _, in := range inputs {
		if in == "" || in == "-" || isURL(in) {
			continue
		}
		inAbs, err := filepath.Abs(in)
		if err != nil {
			return "", fmt.Errorf("pathutil: invalid input path %s: %w", in, err)
		}
		if inAbs == abs {
			return "", fmt.Errorf("pathutil: output %s would overwrite input %s", output, in)
		}
		if statErr != nil {
			continue
		}
		if inInfo, err := os.Stat(inAbs); err == nil && os.SameFile(outInfo, inInfo) {
			return "", fmt.Errorf("pathutil: output %s would overwrite input %s", output, in)
		}
	}
	return abs, nil
}

func isURL(s string) bool {
	return len(s) > 7 && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
}
