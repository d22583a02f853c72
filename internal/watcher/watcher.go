package watcher

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/errors"
)

// StdinPath names standard input among the patterns. It is never expanded.
const StdinPath = "-"

// Event represents a file change detected by the watcher.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher monitors files for changes using OS-level notifications.
type Watcher struct {
	fsw    *fsnotify.Watcher
	Events chan Event
	log    zerolog.Logger
	paths  []string
}

// New creates a Watcher for the given glob patterns.
// Patterns are expanded at startup and the resulting files are watched.
func New(patterns []string, log zerolog.Logger) (*Watcher, error) {
	files, err := Expand(patterns)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}

	w := &Watcher{
		fsw:    fsw,
		Events: make(chan Event, 256),
		log:    log,
	}

	for _, file := range files {
		if file == StdinPath {
			_ = fsw.Close()
			return nil, errors.Errorf("standard input cannot be followed, pass file paths instead")
		}

		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}

		if err := fsw.Add(abs); err != nil {
			log.Warn().Err(err).Str("path", abs).Msg("cannot watch file")
			continue
		}

		w.paths = append(w.paths, abs)
	}

	if len(w.paths) == 0 {
		_ = fsw.Close()
		return nil, errors.Errorf("no file could be watched for the given patterns: %v", patterns)
	}

	return w, nil
}

// Start begins listening for file events. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Forward relevant events (write, create, remove, rename).
			switch {
			case ev.Op&fsnotify.Write != 0,
				ev.Op&fsnotify.Create != 0,
				ev.Op&fsnotify.Remove != 0,
				ev.Op&fsnotify.Rename != 0:
				select {
				case w.Events <- Event{Path: ev.Name, Op: ev.Op}:
				case <-ctx.Done():
					return
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// Paths returns the list of files currently being watched.
func (w *Watcher) Paths() []string {
	return w.paths
}

// ReWatch adds a path back to the watcher (used after rotation).
func (w *Watcher) ReWatch(path string) error {
	return w.fsw.Add(path)
}

// Expand resolves file arguments to the files to read, in argument order.
// StdinPath is kept as is. A plain path is kept even when it does not exist, so that
// opening it reports the error; a glob that matches nothing is an error.
// Supports recursive patterns like /var/log/**/*.log via doublestar.
func Expand(patterns []string) ([]string, error) {
	var files []string

	for _, pattern := range patterns {
		if pattern == StdinPath || !isGlob(pattern) {
			files = appendUnique(files, pattern)
			continue
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			return nil, errors.Errorf("failed to expand pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			return nil, errors.Errorf("no files matched pattern %q", pattern)
		}

		slices.Sort(matches)

		for _, match := range matches {
			files = appendUnique(files, match)
		}
	}

	return files, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func appendUnique(files []string, file string) []string {
	if file != StdinPath && slices.Contains(files, file) {
		return files
	}

	return append(files, file)
}

// expandGlob resolves a glob pattern to matching file paths.
func expandGlob(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
}
