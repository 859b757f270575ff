package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oukeidos/npcxlate/internal/files"
	"github.com/oukeidos/npcxlate/internal/journal"
	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/script"
	"github.com/oukeidos/npcxlate/internal/textutil"
)

const outputPerms os.FileMode = 0644

// Run translates the configured line range of one file into its output.
//
// The output always holds a prefix of the translated file. A non-force run
// resumes after the lines the output already has and does nothing when they
// cover the range. A forced run rewrites the range and keeps the output's
// lines outside it.
func (p *Processor) Run(ctx context.Context, cfg Config) (RunResult, error) {
	var notes []string
	cfg, notes = cfg.Normalize()
	for _, note := range notes {
		logger.Warn("Config normalized", "detail", note)
	}
	if err := cfg.Validate(); err != nil {
		return RunResult{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := checkPaths(cfg.InputPath, cfg.OutputPath); err != nil {
		return RunResult{}, err
	}

	// Init
	lines, err := script.ReadLines(cfg.InputPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to read input: %w", err)
	}
	start, end := cfg.lineRange(len(lines))
	result := RunResult{
		OutputPath: cfg.OutputPath,
		TotalLines: len(lines),
		StartIndex: start,
		EndIndex:   end,
	}

	existing, err := script.ReadLines(cfg.OutputPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return result, fmt.Errorf("failed to read existing output: %w", err)
	}
	inputHash, err := script.Checksum(cfg.InputPath)
	if err != nil {
		return result, fmt.Errorf("failed to hash input: %w", err)
	}
	journalPath := journal.PathFor(cfg.OutputPath)

	// Align
	var tail []string
	if cfg.Force {
		keep := min(len(existing), start)
		prefix := append(append([]string{}, existing[:keep]...), lines[keep:start]...)
		if len(existing) > end {
			tail = existing[end:]
		}
		if err := files.AtomicWrite(cfg.OutputPath, []byte(joinTerminated(prefix, lines)), outputPerms); err != nil {
			return result, fmt.Errorf("failed to reset output: %w", err)
		}
		result.Resume = start
	} else {
		warnIfInputChanged(journalPath, inputHash)
		result.Resume = max(len(existing), start)
		if result.Resume >= end {
			logger.Info("Output already covers the requested range", "output", cfg.OutputPath, "existing", len(existing), "end", end)
			result.Status = RunStatusSkipped
			return result, nil
		}
		if len(existing) > 0 && !hasEOL(existing[len(existing)-1]) {
			if err := files.AtomicWrite(cfg.OutputPath, []byte(joinTerminated(existing, lines)), outputPerms); err != nil {
				return result, fmt.Errorf("failed to terminate output: %w", err)
			}
		}
	}

	out, err := files.OpenAppender(cfg.OutputPath, outputPerms)
	if err != nil {
		return result, err
	}
	defer out.Close()

	if !cfg.Force {
		for i := len(existing); i < start; i++ {
			if err := out.Append(lines[i]); err != nil {
				return result, err
			}
		}
	}

	// Translate
	logger.Info("Translating",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"lines", fmt.Sprintf("%d-%d", start+1, end),
		"resume", result.Resume+1,
		"force", cfg.Force,
	)
	total := end - result.Resume
	lastEOL := true
	for i := result.Resume; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return p.canceled(result, cfg, journalPath, inputHash, err)
		}
		translated, err := p.TranslateLine(ctx, lines[i])
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return p.canceled(result, cfg, journalPath, inputHash, ctxErr)
			}
			return result, fmt.Errorf("line %d: %w", i+1, err)
		}
		if err := out.Append(translated); err != nil {
			return result, err
		}
		result.LinesWritten++
		lastEOL = hasEOL(translated)
		if translated != lines[i] {
			result.LinesChanged++
			if logger.Enabled(logger.LevelDebug) {
				logger.Debug("Line translated", "line", i+1, "text", textutil.Preview(strings.TrimSpace(translated), 80))
			}
		}
		if cfg.OnProgress != nil {
			cfg.OnProgress(Progress{Line: i + 1, Done: result.LinesWritten, Total: total})
		}
	}

	if len(tail) > 0 {
		if !lastEOL {
			if err := out.Append("\n"); err != nil {
				return result, err
			}
		}
		for _, l := range tail {
			if err := out.Append(l); err != nil {
				return result, err
			}
		}
		logger.Debug("Restored output beyond range", "lines", len(tail))
	}

	result.Status = RunStatusCompleted
	result.JournalPath = saveJournal(journalPath, cfg, result, inputHash)
	logger.Info("File finished", "output", cfg.OutputPath, "written", result.LinesWritten, "changed", result.LinesChanged)
	return result, nil
}

func (p *Processor) canceled(result RunResult, cfg Config, journalPath, inputHash string, err error) (RunResult, error) {
	result.Status = RunStatusCanceled
	logger.Warn("Run canceled, output kept for resume", "output", cfg.OutputPath, "written", result.LinesWritten)
	if result.LinesWritten > 0 {
		result.JournalPath = saveJournal(journalPath, cfg, result, inputHash)
	}
	return result, err
}

func checkPaths(input, output string) error {
	absIn, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	if absIn == absOut {
		return fmt.Errorf("input and output files are the same (%s)", absIn)
	}
	inInfo, err := os.Stat(absIn)
	if err != nil {
		return fmt.Errorf("failed to stat input path: %w", err)
	}
	if outInfo, err := os.Stat(absOut); err == nil {
		if os.SameFile(inInfo, outInfo) {
			return fmt.Errorf("input and output files are the same (%s)", absIn)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat output path: %w", err)
	}
	return files.RejectSymlinkPath(output)
}

func hasEOL(line string) bool {
	_, eol := script.SplitEOL(line)
	return eol != ""
}

// joinTerminated concatenates out, giving its last line a terminator taken
// from the input line at the same index (or "\n") when it has none.
func joinTerminated(out, input []string) string {
	if len(out) == 0 {
		return ""
	}
	last := len(out) - 1
	var b strings.Builder
	for _, l := range out[:last] {
		b.WriteString(l)
	}
	b.WriteString(out[last])
	if !hasEOL(out[last]) {
		eol := "\n"
		if last < len(input) {
			if _, e := script.SplitEOL(input[last]); e != "" {
				eol = e
			}
		}
		b.WriteString(eol)
	}
	return b.String()
}

// warnIfInputChanged compares the input against the journal of the run that
// produced the existing output.
func warnIfInputChanged(path, inputHash string) {
	j, err := journal.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Warn("Ignoring unreadable run journal", "path", path, "error", err)
		return
	}
	if j.InputHash != inputHash {
		logger.Warn("Input changed since the output was started; resuming by line count",
			"journal", path, "run_id", j.RunID)
	}
}

func saveJournal(path string, cfg Config, result RunResult, inputHash string) string {
	j := &journal.Journal{
		InputPath:    cfg.InputPath,
		InputHash:    inputHash,
		Target:       cfg.Target,
		Backend:      cfg.Backend,
		StartIndex:   result.StartIndex,
		EndIndex:     result.EndIndex,
		Resume:       result.Resume,
		Force:        cfg.Force,
		LinesWritten: result.LinesWritten,
		Status:       string(result.Status),
		FinishedAt:   time.Now().UTC(),
	}
	if err := journal.Save(path, j); err != nil {
		logger.Warn("Failed to write run journal", "path", path, "error", err)
		return ""
	}
	logger.Debug("Run journal saved", "path", path, "run_id", j.RunID)
	return path
}
