package files

import (
	"fmt"
	"os"
)

// Appender appends text to the end of a file and syncs it to disk after
// every call, so a crash loses at most the line being written.
type Appender struct {
	f    *os.File
	path string
}

// OpenAppender opens path for appending, creating it when missing.
func OpenAppender(path string, perms os.FileMode) (*Appender, error) {
	if err := RejectSymlinkPath(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, perms)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for append: %w", path, err)
	}
	return &Appender{f: f, path: path}, nil
}

// Append writes s and syncs the file.
func (a *Appender) Append(s string) error {
	if _, err := a.f.WriteString(s); err != nil {
		return fmt.Errorf("failed to append to %s: %w", a.path, err)
	}
	if err := a.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", a.path, err)
	}
	return nil
}

func (a *Appender) Close() error {
	return a.f.Close()
}
