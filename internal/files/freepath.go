package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxNumbered = 99

// FreePath returns path when nothing exists there. Otherwise it inserts
// "-2" through "-99" before the extension and finally a UUID, returning the
// first candidate that is free.
func FreePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}
	free, err := isFree(path)
	if err != nil || free {
		return path, err
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 2; n <= maxNumbered; n++ {
		candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
		free, err := isFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext), nil
	}
	return fmt.Sprintf("%s-%s%s", base, id, ext), nil
}

func isFree(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	default:
		return false, err
	}
}
