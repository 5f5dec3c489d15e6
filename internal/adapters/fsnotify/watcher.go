// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches either a directory tree (recursively, skipping VCS and build
// directories) or a single file (through its parent directory, since editors
// replace files by rename), and debounces rapid events (editors often trigger
// multiple writes per save): a callback fires once a path has gone quiet.
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corey/acmatch/internal/ports"
	"github.com/fsnotify/fsnotify"
)

// Directories to ignore when watching a tree.
var ignoreDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	".acmatch":     true,
}

// File suffixes to ignore (editor swap files, OS droppings).
var ignoreFiles = map[string]bool{
	".DS_Store": true,
	".swp":      true,
	".swx":      true,
	"~":         true,
}

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}

	mu       sync.Mutex // guards stopped and pending
	stopped  bool
	pending  map[string]*time.Timer // one trailing timer per path
	inflight sync.WaitGroup
}

var _ ports.Watcher = (*Watcher)(nil)

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:      fw,
		done:    make(chan struct{}),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Watch starts monitoring path. onChange is called with the absolute path of
// each changed file.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	// only is non-empty when a single file is watched.
	var only string
	if info.IsDir() {
		err = filepath.Walk(absPath, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return nil // skip inaccessible paths
			}
			if fi.IsDir() {
				if shouldIgnoreDir(fi.Name()) && p != absPath {
					return filepath.SkipDir
				}
				return w.fw.Add(p)
			}
			return nil
		})
	} else {
		only = absPath
		err = w.fw.Add(filepath.Dir(absPath))
	}
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				p := event.Name

				if only != "" {
					if p != only {
						continue
					}
				} else {
					// For Create events, add new directories to the watch list
					if event.Has(fsnotify.Create) {
						if fi, err := os.Stat(p); err == nil && fi.IsDir() {
							if !shouldIgnoreDir(fi.Name()) {
								w.fw.Add(p)
							}
							continue
						}
					}
					if shouldIgnorePath(p) {
						continue
					}
				}

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.schedule(p, onChange)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed; fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule (re)arms the trailing timer for path. onChange fires once the
// path has been quiet for debounceInterval, so it sees the final content of a
// multi-write save.
func (w *Watcher) schedule(path string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(debounceInterval)
		return
	}
	w.pending[path] = time.AfterFunc(debounceInterval, func() {
		w.mu.Lock()
		delete(w.pending, path)
		if w.stopped {
			w.mu.Unlock()
			return
		}
		w.inflight.Add(1)
		w.mu.Unlock()

		defer w.inflight.Done()
		onChange(path)
	})
}

// Stop ends monitoring and releases all resources. Pending callbacks are
// cancelled and running ones are waited for.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
	close(w.done)
	w.mu.Unlock()

	w.inflight.Wait()
	return w.fw.Close()
}

// shouldIgnoreDir returns true if the directory name should be skipped.
func shouldIgnoreDir(name string) bool {
	return ignoreDirs[name]
}

// shouldIgnorePath returns true if the file path should not trigger onChange.
func shouldIgnorePath(path string) bool {
	base := filepath.Base(path)

	for suffix := range ignoreFiles {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	// Check if any path component is an ignored directory
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}

	return false
}
