package script

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ReadLines loads a script file as lines that keep their terminators, so
// joining the result reproduces the file. Invalid UTF-8 is replaced by U+FFFD.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(strings.ToValidUTF8(string(data), "\uFFFD")), nil
}

// CountLines returns the number of lines in path, and false when the file
// does not exist.
func CountLines(path string) (int, bool, error) {
	lines, err := ReadLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return len(lines), true, nil
}

// SplitLines splits s after every '\n'. A final line without a terminator is
// kept; an empty string has no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// SplitEOL separates a line from its terminator ("\n", "\r\n" or "").
func SplitEOL(line string) (body, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// IsComment reports whether a line is a whole-line "//" comment.
func IsComment(body string) bool {
	return strings.HasPrefix(strings.TrimSpace(body), "//")
}

// Checksum returns a sha256-prefixed hex digest of the file at path.
func Checksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// OutputPath returns the default translated path for input, e.g.
// "npc/prontera.txt" -> "npc/prontera.zh-cn.txt".
func OutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return fmt.Sprintf("%s.%s.txt", strings.TrimSuffix(input, ext), suffix)
}

// IsTranslatedName reports whether path already carries the translated
// suffix, e.g. "prontera.zh-cn.txt".
func IsTranslatedName(path, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), "."+strings.ToLower(suffix)+".txt")
}
