package formatter

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Extension is the file extension of query sources.
const Extension = ".tql"

// Mode selects what FormatFiles does with a formatted file.
type Mode int

// File modes.
const (
	ModeCheck Mode = iota // report whether the file is formatted
	ModeWrite             // rewrite files that are not formatted
)

// Result is the outcome for one file.
type Result struct {
	Path      string
	Changed   bool   // the file was not in canonical layout
	Formatted string // canonical text
	Err       error  // read, parse or write failure
}

// FormatFile formats one file in the given mode.
func (f *Formatter) FormatFile(path string, mode Mode) Result {
	res := Result{Path: path}

	src, err := os.ReadFile(path) //nolint:gosec // path supplied by the user
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return res
	}

	out, err := f.Format(string(src))
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}
	res.Formatted = out
	res.Changed = out != string(src)

	if res.Changed && mode == ModeWrite {
		info, err := os.Stat(path)
		if err != nil {
			res.Err = fmt.Errorf("failed to stat %s: %w", path, err)
			return res
		}
		if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
			res.Err = fmt.Errorf("failed to write %s: %w", path, err)
			return res
		}
		f.logger.Info("formatted file", "path", path)
	} else {
		f.logger.Debug("checked file", "path", path, "changed", res.Changed)
	}
	return res
}

// FormatFiles formats files concurrently, at most Options.Concurrency at a
// time. Per-file failures are reported in the results, which keep the order
// of paths. The returned error is non-nil only when ctx is cancelled.
func (f *Formatter) FormatFiles(ctx context.Context, paths []string, mode Mode) ([]Result, error) {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = f.FormatFile(path, mode)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// CollectFiles expands directories into the query source files below them.
// Plain file arguments are kept whatever their extension. Hidden
// directories are skipped.
func CollectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == Extension {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
