// internal/copier/errors.go
package copier

import "errors"

var (
	// ErrCopyFailed indicates a file copy operation failed.
	ErrCopyFailed = errors.New("failed to copy file")

	// ErrSourceMissing indicates the source file disappeared between search and copy.
	ErrSourceMissing = errors.New("source file does not exist")
)
