// Package search walks a media directory tree and matches files against
// playlist target filenames.
package search

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/vmunix/m3usync/internal/config"
	"github.com/vmunix/m3usync/pkg/mediafile"
)

// Match is one located file for a target filename or pattern.
type Match struct {
	Target  string // target filename (or pattern) this match satisfies
	Path    string // absolute path
	RelPath string // path relative to the search root
	Size    int64
}

// Results maps targets to their matches, preserving target input order.
type Results struct {
	targets  []string
	byTarget map[string][]Match
}

// Targets returns the target names in input order.
func (r *Results) Targets() []string {
	out := make([]string, len(r.targets))
	copy(out, r.targets)
	return out
}

// For returns the matches recorded for a target.
func (r *Results) For(target string) []Match {
	out := make([]Match, len(r.byTarget[target]))
	copy(out, r.byTarget[target])
	return out
}

// Unique returns one match per distinct resolved source path, in first-seen
// order across targets.
func (r *Results) Unique() []Match {
	seen := make(map[string]bool)
	var unique []Match
	for _, target := range r.targets {
		for _, m := range r.byTarget[target] {
			key := m.Path
			if resolved, err := filepath.EvalSymlinks(m.Path); err == nil {
				key = resolved
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			unique = append(unique, m)
		}
	}
	return unique
}

// Stats summarizes a search.
type Stats struct {
	TotalMatches   int
	TargetsMatched int
	Targets        int
	UniqueFiles    int
}

// Stats computes summary counts for the results.
func (r *Results) Stats() Stats {
	s := Stats{Targets: len(r.targets)}
	for _, target := range r.targets {
		n := len(r.byTarget[target])
		s.TotalMatches += n
		if n > 0 {
			s.TargetsMatched++
		}
	}
	s.UniqueFiles = len(r.Unique())
	return s
}

// Searcher locates media files under a directory root.
type Searcher struct {
	opts    config.Options
	log     *slog.Logger
	scanned []string // basenames of supported files seen in the last walk
}

// NewSearcher creates a file searcher.
func NewSearcher(opts config.Options, log *slog.Logger) *Searcher {
	return &Searcher{opts: opts, log: log}
}

// Search walks root and matches every supported file's base name against the
// target filenames. Every target appears in the results, matched or not.
// Returns ErrNotFound or ErrNotDirectory for an unusable root.
func (s *Searcher) Search(ctx context.Context, root string, targets []string) (*Results, error) {
	if err := s.checkRoot(root); err != nil {
		return nil, err
	}

	s.log.Info("searching media folder", "root", root, "targets", len(targets))

	results := newResults(targets)

	// First target wins when several fold to the same key.
	byKey := make(map[string]string, len(targets))
	for _, target := range targets {
		key := mediafile.Key(target, s.opts.CaseSensitive)
		if _, ok := byKey[key]; !ok {
			byKey[key] = target
		}
	}

	scanned := 0
	err := s.walk(ctx, root, func(path, rel string, size int64) {
		scanned++
		target, ok := byKey[mediafile.Key(filepath.Base(path), s.opts.CaseSensitive)]
		if !ok {
			return
		}
		results.byTarget[target] = append(results.byTarget[target], Match{
			Target:  target,
			Path:    path,
			RelPath: rel,
			Size:    size,
		})
	})
	if err != nil {
		return nil, err
	}

	stats := results.Stats()
	s.log.Info("search complete",
		"scanned", scanned,
		"matches", stats.TotalMatches,
		"targets_matched", stats.TargetsMatched,
		"targets", stats.Targets,
	)
	return results, nil
}

// SearchPatterns matches supported files against shell-style wildcard
// patterns instead of exact names. Results are keyed by pattern, and a file
// may satisfy several patterns.
func (s *Searcher) SearchPatterns(ctx context.Context, root string, patterns []string) (*Results, error) {
	if err := s.checkRoot(root); err != nil {
		return nil, err
	}

	type compiled struct {
		pattern string
		g       glob.Glob
	}
	globs := make([]compiled, 0, len(patterns))
	for _, pattern := range patterns {
		src := pattern
		if !s.opts.CaseSensitive {
			src = strings.ToLower(pattern)
		}
		g, err := glob.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		globs = append(globs, compiled{pattern: pattern, g: g})
	}

	s.log.Info("searching with patterns", "root", root, "patterns", len(patterns))

	results := newResults(patterns)
	err := s.walk(ctx, root, func(path, rel string, size int64) {
		name := mediafile.Normalize(filepath.Base(path))
		if !s.opts.CaseSensitive {
			name = strings.ToLower(name)
		}
		for _, c := range globs {
			if c.g.Match(name) {
				results.byTarget[c.pattern] = append(results.byTarget[c.pattern], Match{
					Target:  c.pattern,
					Path:    path,
					RelPath: rel,
					Size:    size,
				})
			}
		}
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("pattern search complete", "matches", results.Stats().TotalMatches)
	return results, nil
}

func newResults(targets []string) *Results {
	r := &Results{
		targets:  make([]string, 0, len(targets)),
		byTarget: make(map[string][]Match, len(targets)),
	}
	for _, target := range targets {
		if _, ok := r.byTarget[target]; ok {
			continue
		}
		r.targets = append(r.targets, target)
		r.byTarget[target] = nil
	}
	return r
}

func (s *Searcher) checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return fmt.Errorf("stat media folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return nil
}

// walk visits every supported regular file under root, honoring the recursive
// and follow-symlink options. Per-directory errors are logged and skipped.
// The scanned name list for suggestions is rebuilt on each walk.
func (s *Searcher) walk(ctx context.Context, root string, visit func(path, rel string, size int64)) error {
	s.scanned = s.scanned[:0]
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve media folder: %w", err)
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			s.log.Warn("skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != absRoot && !s.opts.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if !s.opts.FollowSymlinks {
				return nil
			}
			// Only symlinks to regular files are considered.
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
			s.visitFile(absRoot, path, info.Size(), visit)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.log.Warn("skipping file", "path", path, "error", err)
			return nil
		}
		s.visitFile(absRoot, path, info.Size(), visit)
		return nil
	})
}

func (s *Searcher) visitFile(root, path string, size int64, visit func(path, rel string, size int64)) {
	name := filepath.Base(path)
	if !mediafile.HasExtension(name, s.opts.Extensions) {
		return
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = name
	}
	s.scanned = append(s.scanned, name)
	visit(path, rel, size)
}
