package tailer

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/simao/jaxe/internal/model"
	"github.com/simao/jaxe/internal/watcher"
)

const (
	reconnectAttempts = 5
	reconnectInterval = time.Second
)

// Tailer reads the lines of watched files, then every line appended to them, and
// emits RawLine values. Lines of one file are emitted in file order.
type Tailer struct {
	mu       sync.Mutex
	files    map[string]*trackedFile
	out      chan model.RawLine
	events   <-chan watcher.Event
	reopened chan string
	watch    *watcher.Watcher
	log      zerolog.Logger
	opened   int
	interval time.Duration
}

type trackedFile struct {
	path   string
	file   *os.File
	reader *bufio.Reader
	offset int64
	buf    string // partial line buffer
}

// New creates a Tailer that reads events from the given Watcher.
func New(w *watcher.Watcher, log zerolog.Logger) *Tailer {
	return &Tailer{
		files:    make(map[string]*trackedFile),
		out:      make(chan model.RawLine, 512),
		events:   w.Events,
		reopened: make(chan string),
		watch:    w,
		log:      log,
		interval: reconnectInterval,
	}
}

// Lines returns the channel where raw log lines are sent.
func (t *Tailer) Lines() <-chan model.RawLine {
	return t.out
}

// FileCount returns how many files have been opened so far, reopenings included.
func (t *Tailer) FileCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.opened
}

// Start begins processing watcher events. Blocks until context is cancelled.
func (t *Tailer) Start(ctx context.Context) {
	defer close(t.out)
	defer t.closeAll()

	// Open all initially watched files and emit what they already hold.
	for _, p := range t.watch.Paths() {
		t.openFile(p)
		t.readNewLines(ctx, p)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-t.events:
			if !ok {
				return
			}
			t.handleEvent(ctx, ev)

		case path := <-t.reopened:
			t.openFile(path)
			t.readNewLines(ctx, path)
		}
	}
}

// handleEvent dispatches watcher events to the appropriate handler.
func (t *Tailer) handleEvent(ctx context.Context, ev watcher.Event) {
	switch {
	case ev.Op&fsnotify.Write != 0:
		t.readNewLines(ctx, ev.Path)

	case ev.Op&fsnotify.Create != 0:
		// New file appeared (possibly after rotation).
		t.openFile(ev.Path)
		t.readNewLines(ctx, ev.Path)

	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		// File rotated or deleted: drain what is left, close and schedule reconnect.
		t.readNewLines(ctx, ev.Path)
		t.flushPartial(ctx, ev.Path)
		t.closeFile(ev.Path)
		go t.reconnect(ctx, ev.Path)
	}
}

// openFile opens a file for tailing from its beginning.
func (t *Tailer) openFile(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.files[path]; exists {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		t.log.Warn().Err(err).Str("path", path).Msg("cannot open file")
		return false
	}

	t.files[path] = &trackedFile{
		path:   path,
		file:   f,
		reader: bufio.NewReader(f),
	}
	t.opened++

	return true
}

// readNewLines reads from the last offset to EOF and emits complete lines.
// A trailing partial line is kept until the rest of it is written.
func (t *Tailer) readNewLines(ctx context.Context, path string) {
	t.mu.Lock()
	tf, ok := t.files[path]
	t.mu.Unlock()

	if !ok {
		return
	}

	t.detectTruncation(tf)

	for {
		chunk, err := tf.reader.ReadString('\n')
		tf.offset += int64(len(chunk))

		if strings.HasSuffix(chunk, "\n") {
			line := tf.buf + strings.TrimSuffix(chunk, "\n")
			tf.buf = ""

			if !t.send(ctx, model.RawLine{Text: line, Source: path}) {
				return
			}

			continue
		}

		tf.buf += chunk

		if err != nil && err != io.EOF {
			t.log.Warn().Err(err).Str("path", path).Msg("read error")
		}

		return
	}
}

// detectTruncation restarts from the beginning of a file that shrank below the
// read offset, as happens with copy-and-truncate rotation.
func (t *Tailer) detectTruncation(tf *trackedFile) {
	info, err := tf.file.Stat()
	if err != nil || info.Size() >= tf.offset {
		return
	}

	t.log.Debug().Str("path", tf.path).Msg("file truncated, reading from the start")

	if _, err := tf.file.Seek(0, io.SeekStart); err != nil {
		t.log.Warn().Err(err).Str("path", tf.path).Msg("cannot rewind truncated file")
		return
	}

	tf.reader.Reset(tf.file)
	tf.offset = 0
	tf.buf = ""
}

// flushPartial emits a buffered line that never got its newline.
func (t *Tailer) flushPartial(ctx context.Context, path string) {
	t.mu.Lock()
	tf, ok := t.files[path]
	t.mu.Unlock()

	if !ok || tf.buf == "" {
		return
	}

	line := tf.buf
	tf.buf = ""
	t.send(ctx, model.RawLine{Text: line, Source: path})
}

func (t *Tailer) send(ctx context.Context, line model.RawLine) bool {
	select {
	case t.out <- line:
		return true
	case <-ctx.Done():
		return false
	}
}

// closeFile releases a tracked file.
func (t *Tailer) closeFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tf, ok := t.files[path]; ok {
		tf.file.Close()
		delete(t.files, path)
	}
}

// reconnect polls for a file to reappear after rotation and hands it back to Start,
// which reopens it and reads what was already written to it.
func (t *Tailer) reconnect(ctx context.Context, path string) {
	for i := 0; i < reconnectAttempts; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(t.interval):
		}

		if _, err := os.Stat(path); err == nil {
			t.log.Info().Str("path", path).Msg("reconnected to rotated file")
			if err := t.watch.ReWatch(path); err != nil {
				t.log.Warn().Err(err).Str("path", path).Msg("cannot watch rotated file")
			}

			select {
			case t.reopened <- path:
			case <-ctx.Done():
			}

			return
		}
	}

	t.log.Warn().Str("path", path).Int("attempts", reconnectAttempts).Msg("gave up reconnecting")
}

// closeAll closes all tracked file handles.
func (t *Tailer) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for path, tf := range t.files {
		tf.file.Close()
		delete(t.files, path)
	}
}
