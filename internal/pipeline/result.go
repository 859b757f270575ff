package pipeline

// RunStatus is the terminal state of a file run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "Completed"
	// RunStatusSkipped means the output already covered the range.
	RunStatusSkipped  RunStatus = "Skipped"
	RunStatusCanceled RunStatus = "Canceled"
)

// RunResult describes what a file run did.
type RunResult struct {
	Status     RunStatus
	OutputPath string
	// JournalPath is empty when no journal was written.
	JournalPath string

	TotalLines int
	StartIndex int
	EndIndex   int
	Resume     int
	// LinesWritten counts translated-range lines appended, excluding padding
	// and the re-appended tail of a forced run.
	LinesWritten int
	// LinesChanged counts lines whose text differs from the input.
	LinesChanged int
}
