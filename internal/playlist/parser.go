// Package playlist extracts referenced media filenames from M3U8 documents.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/grafov/m3u8"

	"github.com/vmunix/m3usync/internal/config"
	"github.com/vmunix/m3usync/pkg/mediafile"
)

// Parser extracts media filenames from M3U8 playlists.
type Parser struct {
	opts config.Options
	log  *slog.Logger
}

// NewParser creates a playlist parser.
func NewParser(opts config.Options, log *slog.Logger) *Parser {
	return &Parser{opts: opts, log: log}
}

// ParseFile parses the playlist at path and returns the referenced media
// filenames, deduplicated in first-seen order.
// Returns ErrNotFound if the file does not exist, ErrParse if the document
// cannot be decoded.
func (p *Parser) ParseFile(playlistPath string) ([]string, error) {
	f, err := os.Open(playlistPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, playlistPath)
		}
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer func() { _ = f.Close() }()

	p.log.Info("parsing playlist", "path", playlistPath)
	return p.Parse(f)
}

// Parse decodes a playlist document and extracts media filenames.
func (p *Parser) Parse(r io.Reader) ([]string, error) {
	decoded, listType, err := m3u8.DecodeFrom(bufio.NewReader(r), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var refs []segmentRef
	switch listType {
	case m3u8.MEDIA:
		media := decoded.(*m3u8.MediaPlaylist)
		// Segments is a ring buffer sized to the window; unused slots are nil.
		for _, seg := range media.Segments {
			if seg == nil {
				continue
			}
			refs = append(refs, segmentRef{uri: seg.URI, title: seg.Title})
		}
	case m3u8.MASTER:
		// Variant URIs reference nested playlists, not media files. They flow
		// through the same extraction and are dropped by the extension filter.
		master := decoded.(*m3u8.MasterPlaylist)
		for _, v := range master.Variants {
			if v == nil {
				continue
			}
			refs = append(refs, segmentRef{uri: v.URI})
		}
	}

	p.log.Info("decoded playlist", "segments", len(refs))

	var names []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		name := p.extractFilename(ref.uri)
		if name == "" {
			name = p.extractFilename(ref.title)
		}
		if name == "" {
			continue
		}
		key := mediafile.Key(name, p.opts.CaseSensitive)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}

	p.log.Info("extracted media filenames", "count", len(names))
	return names, nil
}

type segmentRef struct {
	uri   string
	title string
}

// extractFilename derives a media filename from a segment reference: the last
// path component for URLs, otherwise the base name of the value treated as a
// filesystem path. A bare filename is its own base name, so plain values ending
// in a supported extension come through verbatim. Returns "" when no supported
// filename can be derived.
func (p *Parser) extractFilename(text string) string {
	if text == "" {
		return ""
	}

	if hasURLScheme(text) {
		if u, err := url.Parse(text); err == nil {
			name := path.Base(u.Path)
			if name != "." && name != "/" && mediafile.HasExtension(name, p.opts.Extensions) {
				return name
			}
		}
		// Malformed URL: fall through to path extraction.
	}

	name := filepath.Base(text)
	if name != "." && name != string(filepath.Separator) && mediafile.HasExtension(name, p.opts.Extensions) {
		return name
	}

	return ""
}

func hasURLScheme(s string) bool {
	for _, scheme := range []string{"http://", "https://", "ftp://"} {
		if strings.HasPrefix(strings.ToLower(s), scheme) {
			return true
		}
	}
	return false
}
