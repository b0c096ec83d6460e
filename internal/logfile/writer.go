// Package logfile provides an io.Writer over a log file that follows
// external rotation. When the file is renamed or removed (logrotate), the
// path is reopened and subsequent writes land in the new file.
package logfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	fileMode = 0o640
	dirMode  = 0o750

	// reopenDelay coalesces the burst of events a rotation produces.
	reopenDelay = 100 * time.Millisecond
)

// Writer appends to a log file and reopens it on rotation.
// Write is safe for concurrent use with Reopen and the watch goroutine.
type Writer struct {
	path string

	mu     sync.Mutex
	file   *os.File
	closed bool

	watchMu  sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *time.Timer
	done     chan struct{}

	reopens atomic.Uint64
}

// Open opens path for appending, creating it and its directory if needed.
func Open(path string) (*Writer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve log path: %w", err)
	}
	f, err := openFile(abs)
	if err != nil {
		return nil, err
	}
	return &Writer{path: abs, file: f}, nil
}

func openFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, fileMode)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Reopens returns how many times the file has been reopened.
func (w *Writer) Reopens() uint64 { return w.reopens.Load() }

// Write appends p to the current file.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.file.Write(p)
}

// Reopen closes the current file and opens the path again.
// On failure the previous file stays in use.
func (w *Writer) Reopen() error {
	f, err := openFile(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		f.Close()
		return os.ErrClosed
	}
	old := w.file
	w.file = f
	w.mu.Unlock()

	w.reopens.Add(1)
	return old.Close()
}

// Watch starts watching the file's directory and reopens the file when it is
// renamed, removed or recreated by someone else. The watch stops when ctx is
// done or the Writer is closed. Watch returns once the watch is registered.
func (w *Writer) Watch(ctx context.Context) error {
	w.watchMu.Lock()
	defer w.watchMu.Unlock()

	if w.watcher != nil {
		return errors.New("logfile: already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = watcher
	w.done = make(chan struct{})
	go w.run(ctx, watcher, w.done)
	return nil
}

func (w *Writer) run(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Rename|fsnotify.Remove|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleReopen()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// the logger writes through us, stderr is the only place left
			fmt.Fprintf(os.Stderr, "logfile: watch error: %v\n", err)
		}
	}
}

func (w *Writer) scheduleReopen() {
	w.watchMu.Lock()
	defer w.watchMu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(reopenDelay, func() {
		if err := w.Reopen(); err != nil && !errors.Is(err, os.ErrClosed) {
			fmt.Fprintf(os.Stderr, "logfile: reopen %s: %v\n", w.path, err)
		}
	})
}

// Close stops watching and closes the file.
func (w *Writer) Close() error {
	w.watchMu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	watcher, done := w.watcher, w.done
	w.watchMu.Unlock()

	if watcher != nil {
		watcher.Close()
		<-done
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
