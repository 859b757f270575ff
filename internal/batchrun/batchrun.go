// Package batchrun finds NPC script files under a directory and runs the
// file translator over each of them.
package batchrun

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/script"
	"golang.org/x/sync/errgroup"
)

const (
	MinJobs = 1
	MaxJobs = 16
)

// Discover returns every *.txt file under root, sorted, skipping files that
// already carry the translated suffix.
func Discover(root, suffix string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	var found []string
	keep := func(path string) {
		low := strings.ToLower(path)
		if strings.HasSuffix(low, ".txt") && !script.IsTranslatedName(path, suffix) {
			found = append(found, path)
		}
	}

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				keep(filepath.Join(root, e.Name()))
			}
		}
	} else {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				keep(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(found)
	return found, nil
}

// Pending returns the files whose translated output does not exist yet, or
// all of them when force is set.
func Pending(paths []string, suffix string, force bool) ([]string, error) {
	if force {
		return append([]string(nil), paths...), nil
	}
	var out []string
	for _, p := range paths {
		_, err := os.Stat(script.OutputPath(p, suffix))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			out = append(out, p)
		case err != nil:
			return nil, err
		}
	}
	return out, nil
}

// Failure is one file that could not be processed.
type Failure struct {
	Path string
	Err  error
}

// Summary counts the outcome of a batch.
type Summary struct {
	Succeeded []string
	Failed    []Failure
	// Canceled is set when the context ended before every file ran.
	Canceled bool
}

// FileFunc processes one input file.
type FileFunc func(ctx context.Context, path string) error

// Run calls fn for each path with at most jobs calls in flight. One file's
// failure does not stop the others; cancellation stops new files from
// starting.
func Run(ctx context.Context, paths []string, jobs int, fn FileFunc) Summary {
	if jobs < MinJobs {
		jobs = MinJobs
	}
	if jobs > MaxJobs {
		logger.Warn("Jobs clamped", "requested", jobs, "max", MaxJobs)
		jobs = MaxJobs
	}

	var (
		mu  sync.Mutex
		sum Summary
	)
	g := new(errgroup.Group)
	g.SetLimit(jobs)
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		p := p
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			logger.Info("Processing file", "path", p)
			err := fn(ctx, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("File failed", "path", p, "error", err)
				}
				sum.Failed = append(sum.Failed, Failure{Path: p, Err: err})
				return nil
			}
			sum.Succeeded = append(sum.Succeeded, p)
			return nil
		})
	}
	_ = g.Wait()
	sum.Canceled = ctx.Err() != nil
	sort.Strings(sum.Succeeded)
	sort.Slice(sum.Failed, func(i, j int) bool { return sum.Failed[i].Path < sum.Failed[j].Path })
	return sum
}
