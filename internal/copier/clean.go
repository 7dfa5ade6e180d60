// internal/copier/clean.go
package copier

import (
	"os"
	"path/filepath"

	"github.com/vmunix/m3usync/pkg/mediafile"
)

// Clean removes supported-extension files directly inside outDir whose names
// are not in expected. Subdirectories are never entered. Deletion failures
// are logged and skipped. Returns the paths that were removed.
func (c *Copier) Clean(outDir string, expected []string) []string {
	stale := c.CleanPreview(outDir, expected)

	var removed []string
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			c.log.Error("failed to remove stale file", "path", path, "error", err)
			continue
		}
		c.log.Info("removed stale file", "path", path)
		removed = append(removed, path)
	}

	c.log.Info("cleanup complete", "removed", len(removed), "stale", len(stale))
	return removed
}

// CleanPreview returns the paths Clean would remove, without removing them.
func (c *Copier) CleanPreview(outDir string, expected []string) []string {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn("cannot read output folder", "path", outDir, "error", err)
		}
		return nil
	}

	expectedKeys := make(map[string]bool, len(expected))
	for _, name := range expected {
		expectedKeys[mediafile.Key(name, c.opts.CaseSensitive)] = true
	}

	var stale []string
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !mediafile.HasExtension(name, c.opts.Extensions) {
			continue
		}
		if expectedKeys[mediafile.Key(name, c.opts.CaseSensitive)] {
			continue
		}
		stale = append(stale, filepath.Join(outDir, name))
	}
	return stale
}
