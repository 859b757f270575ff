//go:build !windows

package files

import (
	"io/fs"
	"os"
)

func isLink(_ string, info fs.FileInfo) (bool, error) {
	return info.Mode()&fs.ModeSymlink != 0, nil
}

func replaceFile(src, dst string) error {
	return os.Rename(src, dst)
}
