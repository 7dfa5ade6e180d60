// internal/search/errors.go
package search

import "errors"

var (
	// ErrNotFound indicates the media folder does not exist.
	ErrNotFound = errors.New("media folder not found")

	// ErrNotDirectory indicates the media folder path is not a directory.
	ErrNotDirectory = errors.New("media folder is not a directory")
)
