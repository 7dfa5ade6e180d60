// Package mediafile provides filename normalization and comparison helpers
// shared by the playlist, search, and copy stages.
package mediafile

import (
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the NFC form of a filename. macOS stores names in NFD, so
// a playlist entry and an on-disk name can differ in byte representation while
// naming the same file.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// Key returns the comparison key for a filename: NFC-normalized, and
// case-folded unless caseSensitive.
func Key(name string, caseSensitive bool) string {
	k := Normalize(name)
	if !caseSensitive {
		k = strings.ToLower(k)
	}
	return k
}

// Equal reports whether two filenames refer to the same name under the
// configured case sensitivity.
func Equal(a, b string, caseSensitive bool) bool {
	return Key(a, caseSensitive) == Key(b, caseSensitive)
}

// HasExtension reports whether name ends with one of the given suffixes.
// Extension comparison is always case-insensitive.
func HasExtension(name string, extensions []string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// WithSuffix inserts _n before the extension: WithSuffix("a.mp4", 2) == "a_2.mp4".
// The name may contain path separators; only the base name is altered.
func WithSuffix(name string, n int) string {
	dir := filepath.Dir(name)
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	out := stem + "_" + strconv.Itoa(n) + ext
	if dir == "." {
		return out
	}
	return filepath.Join(dir, out)
}
