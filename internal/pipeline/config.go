package pipeline

import (
	"fmt"
	"strings"
)

// Config holds everything a single file run needs besides the translator.
type Config struct {
	InputPath  string
	OutputPath string

	// StartLine is the 1-based first line to translate. Values below 1 mean
	// the first line.
	StartLine int
	// LineCount limits the range; 0 translates to the end of the file.
	LineCount int
	// Force re-translates the range even when the output already covers it.
	Force bool

	// Target and Backend are recorded in the run journal.
	Target  string
	Backend string

	// OnProgress is called after every line appended by the Translate stage.
	OnProgress func(Progress)
}

// Progress reports how far the Translate stage has come.
type Progress struct {
	// Line is the 1-based input line just written.
	Line int
	// Done counts lines written in this run; Total is the number to write.
	Done  int
	Total int
}

// Normalize applies safe bounds to config values and returns any adjustments.
func (c Config) Normalize() (Config, []string) {
	var notes []string
	if c.StartLine < 1 {
		if c.StartLine != 0 {
			notes = append(notes, fmt.Sprintf("start line clamped from %d to 1", c.StartLine))
		}
		c.StartLine = 1
	}
	if c.LineCount < 0 {
		notes = append(notes, fmt.Sprintf("line count %d treated as 0 (to end of file)", c.LineCount))
		c.LineCount = 0
	}
	return c, notes
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("output path is required")
	}
	if c.StartLine < 1 {
		return fmt.Errorf("start line must be 1 or greater, got %d", c.StartLine)
	}
	if c.LineCount < 0 {
		return fmt.Errorf("line count must be 0 or greater, got %d", c.LineCount)
	}
	return nil
}

// lineRange resolves the half-open index range [start,end) over total lines.
func (c Config) lineRange(total int) (start, end int) {
	start = c.StartLine - 1
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end = total
	if c.LineCount > 0 && start+c.LineCount < total {
		end = start + c.LineCount
	}
	return start, end
}
