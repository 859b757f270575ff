package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LinkError reports a write refused because a path component is a link.
type LinkError struct {
	Path string
	At   string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("refusing to write to %s: %s is a symlink or reparse point", e.Path, e.At)
}

// RejectSymlinkPath returns a *LinkError when path, or any existing
// directory above it, is a symlink. Components that do not exist yet end
// the check.
func RejectSymlinkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	for _, p := range ancestry(abs) {
		info, err := os.Lstat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to access %s: %w", p, err)
		}
		link, err := isLink(p, info)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", p, err)
		}
		if link {
			return &LinkError{Path: path, At: p}
		}
	}
	return nil
}

// ancestry lists p and its parents, outermost first.
func ancestry(p string) []string {
	var out []string
	for {
		out = append(out, p)
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}
	slices.Reverse(out)
	return out
}
