// Package fileutil writes output files with restrictive permissions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// OwnerReadWrite is the mode for merged catalogs and playlists, which may
// carry private stream URLs and tokens.
const OwnerReadWrite os.FileMode = 0o600

// WriteFile writes data to path through a temporary file in the same
// directory, so readers never observe a partial file.
func WriteFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(OwnerReadWrite); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("fileutil: %w", err)
	}
	return nil
}
