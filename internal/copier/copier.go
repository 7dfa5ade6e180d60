// Package copier copies matched media files into the output directory and
// prunes stale files from prior runs.
package copier

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmunix/m3usync/internal/config"
	"github.com/vmunix/m3usync/internal/search"
	"github.com/vmunix/m3usync/pkg/mediafile"
)

// Outcome records one copy attempt.
type Outcome struct {
	Source     string
	Dest       string
	Copied     bool
	Skipped    bool
	SkipReason string
	Err        string // human-readable failure; empty on success or skip
	Bytes      int64
}

// Copier copies matched files, accumulating per-file outcomes.
type Copier struct {
	opts     config.Options
	log      *slog.Logger
	outcomes []Outcome
}

// NewCopier creates a file copier.
func NewCopier(opts config.Options, log *slog.Logger) *Copier {
	return &Copier{opts: opts, log: log}
}

// Copy copies the given matches into outDir, creating it (and parents) if
// absent. Per-file failures are recorded in the returned outcomes and never
// abort the batch; the returned error is only for an unusable output
// directory or context cancellation.
func (c *Copier) Copy(ctx context.Context, matches []search.Match, outDir string) ([]Outcome, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output folder: %w", err)
	}

	c.log.Info("copying files", "count", len(matches), "output", outDir)

	c.outcomes = c.outcomes[:0]
	alloc := newNameAllocator(c.opts.CaseSensitive)

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return c.Outcomes(), err
		}

		dest := filepath.Join(outDir, alloc.claim(c.destName(m)))
		c.outcomes = append(c.outcomes, c.copyOne(m.Path, dest))
	}

	stats := c.Stats()
	c.log.Info("copy complete",
		"copied", stats.Copied,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"bytes", stats.Bytes,
	)
	return c.Outcomes(), nil
}

// CopyAll copies every match of every target, in target order. Duplicate
// destination names get the same collision suffixes as Copy.
func (c *Copier) CopyAll(ctx context.Context, results *search.Results, outDir string) ([]Outcome, error) {
	var matches []search.Match
	for _, target := range results.Targets() {
		matches = append(matches, results.For(target)...)
	}
	return c.Copy(ctx, matches, outDir)
}

// destName is the output-relative destination for a match: the source base
// name, or the root-relative path when directory structure is preserved.
func (c *Copier) destName(m search.Match) string {
	if c.opts.MaintainStructure && m.RelPath != "" {
		return m.RelPath
	}
	return filepath.Base(m.Path)
}

func (c *Copier) copyOne(src, dest string) Outcome {
	out := Outcome{Source: src, Dest: dest}

	if _, err := os.Stat(dest); err == nil && !c.opts.Overwrite {
		out.Skipped = true
		out.SkipReason = "destination already exists and overwrite is disabled"
		c.log.Debug("skipping existing file", "dest", dest)
		return out
	}

	size, err := CopyFile(src, dest)
	if err != nil {
		out.Err = err.Error()
		c.log.Error("copy failed", "src", src, "dest", dest, "error", err)
		return out
	}

	out.Copied = true
	out.Bytes = size
	c.log.Debug("file copied", "src", src, "dest", dest, "size_bytes", size)
	return out
}

// Outcomes returns a copy of the accumulated outcomes.
func (c *Copier) Outcomes() []Outcome {
	out := make([]Outcome, len(c.outcomes))
	copy(out, c.outcomes)
	return out
}

// nameAllocator hands out destination names, suffixing _1, _2, ... when a
// name has already been claimed in this batch. One policy for every copy
// path; keys fold case when matching is case-insensitive.
type nameAllocator struct {
	caseSensitive bool
	claimed       map[string]bool
}

func newNameAllocator(caseSensitive bool) *nameAllocator {
	return &nameAllocator{caseSensitive: caseSensitive, claimed: make(map[string]bool)}
}

func (a *nameAllocator) claim(name string) string {
	candidate := name
	for n := 1; a.claimed[mediafile.Key(candidate, a.caseSensitive)]; n++ {
		candidate = mediafile.WithSuffix(name, n)
	}
	a.claimed[mediafile.Key(candidate, a.caseSensitive)] = true
	return candidate
}
