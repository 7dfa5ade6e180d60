package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1 // validation error, nothing to do, or unexpected failure
	exitCopyErrors  = 2 // pipeline completed but some copies failed
	exitInterrupted = 130
)

var rootCmd = &cobra.Command{
	Use:   "m3usync",
	Short: "Copy media files referenced by an M3U8 playlist into a folder",
	Long: `m3usync - sync a folder with the media files an M3U8 playlist references

Parses the playlist, locates the referenced files under a media folder,
and copies them into an output folder, optionally pruning files left
over from a previous playlist.`,
	SilenceUsage: true,
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintf(os.Stderr, "error: %s\n", ee.msg)
			}
			return ee.code
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// exitError carries a specific exit code out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func exitf(code int, format string, args ...any) *exitError {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("m3usync {{.Version}}\n")
	// Errors are printed by Execute with the exit code applied.
	rootCmd.SilenceErrors = true
}
