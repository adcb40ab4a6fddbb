package formatter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of events editors emit for one save.
const debounceDelay = 100 * time.Millisecond

// Watch formats the given files and directories whenever they change until
// ctx is cancelled. Each result is passed to onResult from a single
// goroutine.
func (f *Formatter) Watch(ctx context.Context, paths []string, mode Mode, onResult func(Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Files named explicitly are formatted whatever their extension, as
	// CollectFiles does.
	explicit := make(map[string]bool)
	for _, path := range paths {
		if err := addWatch(watcher, path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			explicit[filepath.Clean(path)] = true
		}
		f.logger.Info("watching", "path", path)
	}

	return f.watchLoop(ctx, watcher, explicit, mode, onResult)
}

// addWatch adds path, and every directory below it, to the watcher.
func addWatch(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(path)
	}
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != path && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return watcher.Add(p)
		}
		return nil
	})
}

func (f *Formatter) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, explicit map[string]bool, mode Mode, onResult func(Result)) error {
	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		results = make(chan Result)
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case res := <-results:
			onResult(res)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if strings.HasPrefix(info.Name(), ".") {
						continue
					}
					if err := addWatch(watcher, event.Name); err != nil {
						f.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					} else {
						f.logger.Debug("watching new directory", "path", event.Name)
					}
					continue
				}
			}
			if filepath.Ext(event.Name) != Extension && !explicit[filepath.Clean(event.Name)] {
				continue
			}

			name := event.Name
			mu.Lock()
			if t, ok := pending[name]; ok {
				t.Stop()
			}
			pending[name] = time.AfterFunc(debounceDelay, func() {
				mu.Lock()
				delete(pending, name)
				mu.Unlock()

				f.logger.Debug("change detected", "path", name)
				res := f.FormatFile(name, mode)
				select {
				case results <- res:
				case <-ctx.Done():
				}
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn("watcher error", "error", err)
		}
	}
}
