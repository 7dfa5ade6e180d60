// internal/copier/report.go
package copier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Stats summarizes a copy batch.
type Stats struct {
	Total   int
	Copied  int
	Skipped int
	Errors  int
	Bytes   int64
}

// Stats derives summary counts from the accumulated outcomes.
func (c *Copier) Stats() Stats {
	s := Stats{Total: len(c.outcomes)}
	for _, out := range c.outcomes {
		switch {
		case out.Copied:
			s.Copied++
			s.Bytes += out.Bytes
		case out.Skipped:
			s.Skipped++
		default:
			s.Errors++
		}
	}
	return s
}

// Report renders a plain-text summary of the copy batch: totals followed by
// itemized error and skip lists.
func (c *Copier) Report() string {
	stats := c.Stats()

	lines := []string{
		"=== File Copy Report ===",
		fmt.Sprintf("Total files processed: %d", stats.Total),
		fmt.Sprintf("Successfully copied: %d", stats.Copied),
		fmt.Sprintf("Skipped: %d", stats.Skipped),
		fmt.Sprintf("Errors: %d", stats.Errors),
		fmt.Sprintf("Total bytes copied: %s bytes", humanize.Comma(stats.Bytes)),
		"",
	}

	if stats.Errors > 0 {
		lines = append(lines, "=== Errors ===")
		for _, out := range c.outcomes {
			if !out.Copied && !out.Skipped {
				lines = append(lines, fmt.Sprintf("ERROR: %s - %s", out.Source, out.Err))
			}
		}
		lines = append(lines, "")
	}

	if stats.Skipped > 0 {
		lines = append(lines, "=== Skipped Files ===")
		for _, out := range c.outcomes {
			if out.Skipped {
				lines = append(lines, fmt.Sprintf("SKIPPED: %s - %s", out.Source, out.SkipReason))
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
