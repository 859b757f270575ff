// Package journal records what the last file run did, next to its output.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oukeidos/npcxlate/internal/files"
)

const CurrentVersion = 1

// Suffix is appended to an output path to name its journal.
const Suffix = ".journal.json"

// Journal describes one file run.
type Journal struct {
	Version      int       `json:"journal_version"`
	RunID        string    `json:"run_id"`
	InputPath    string    `json:"input_path"`
	InputHash    string    `json:"input_hash"`
	Target       string    `json:"target"`
	Backend      string    `json:"backend,omitempty"`
	StartIndex   int       `json:"start_index"`
	EndIndex     int       `json:"end_index"`
	Resume       int       `json:"resume"`
	Force        bool      `json:"force,omitempty"`
	LinesWritten int       `json:"lines_written"`
	Status       string    `json:"status"`
	FinishedAt   time.Time `json:"finished_at"`
}

// PathFor returns the journal path for an output file.
func PathFor(output string) string {
	return output + Suffix
}

// NewRunID returns a time-ordered run identifier.
func NewRunID() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// Validate checks that a loaded journal is usable for comparisons.
func (j *Journal) Validate() error {
	if j.Version != CurrentVersion {
		return fmt.Errorf("unsupported journal_version: %d", j.Version)
	}
	if j.RunID == "" {
		return fmt.Errorf("run_id is empty")
	}
	if !strings.HasPrefix(j.InputHash, "sha256:") {
		return fmt.Errorf("invalid input_hash: %q", j.InputHash)
	}
	if j.StartIndex < 0 || j.EndIndex < j.StartIndex {
		return fmt.Errorf("invalid range [%d,%d)", j.StartIndex, j.EndIndex)
	}
	return nil
}

// Load reads and validates the journal at path.
func Load(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse journal %s: %w", path, err)
	}
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal %s: %w", path, err)
	}
	return &j, nil
}

// Save writes j to path atomically, filling in the version and run ID when
// they are unset.
func Save(path string, j *Journal) error {
	if j.Version == 0 {
		j.Version = CurrentVersion
	}
	if j.RunID == "" {
		j.RunID = NewRunID()
	}
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return files.AtomicWrite(path, append(data, '\n'), 0600)
}
