// internal/playlist/errors.go
package playlist

import "errors"

var (
	// ErrNotFound indicates the playlist file does not exist.
	ErrNotFound = errors.New("playlist file not found")

	// ErrParse indicates the document could not be decoded as a playlist.
	ErrParse = errors.New("failed to parse playlist")
)
