// Package watcher wraps an OS filesystem event stream with debouncing and
// classifies each settled event into the four kinds spec.md §4.7 names.
//
// The "own goroutine feeding a channel the caller drains" shape mirrors the
// teacher's main.go background-refresh goroutine (a ticker driving
// periodic work off the main flow); here the ticker is replaced by a
// per-path debounce timer.
package watcher

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventKind is one of the four settled event kinds spec.md §4.7 defines.
type EventKind int

const (
	DirectoryCreated EventKind = iota
	NewBookFile
	BookFileRemoved
	DirectoryRemoved
)

func (k EventKind) String() string {
	switch k {
	case DirectoryCreated:
		return "DirectoryCreated"
	case NewBookFile:
		return "NewBookFile"
	case BookFileRemoved:
		return "BookFileRemoved"
	case DirectoryRemoved:
		return "DirectoryRemoved"
	default:
		return "Unknown"
	}
}

// Event is one debounced, classified filesystem change.
type Event struct {
	Kind EventKind
	Path string
}

// Config tunes debouncing and book-file recognition.
type Config struct {
	DebounceInterval time.Duration
	MinFileSizeBytes int64
	Extensions       []string // lower-case, without the leading dot
}

// Watcher debounces and classifies fsnotify events under a root directory.
type Watcher struct {
	root   string
	cfg    Config
	fsw    *fsnotify.Watcher
	events chan Event

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closing chan struct{}
	wg      sync.WaitGroup
}

// New creates a Watcher rooted at root, recursively registering every
// non-dotted directory with the OS notifier, and starts its debounce loop.
// Events is a buffered channel; callers must drain it to avoid backpressure
// on the underlying notifier (spec.md §5: "bounded multi-producer
// single-consumer channel").
func New(root string, cfg Config, bufferSize int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:    root,
		cfg:     cfg,
		fsw:     fsw,
		events:  make(chan Event, bufferSize),
		timers:  make(map[string]*time.Timer),
		closing: make(chan struct{}),
	}

	if err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if isDotted(root, path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	}); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func isDotted(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Events returns the channel of debounced, classified events.
func (w *Watcher) Events() <-chan Event { return w.events }

// Close stops the notifier and the debounce loop.
func (w *Watcher) Close() error {
	close(w.closing)
	err := w.fsw.Close()
	w.wg.Wait()
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	close(w.events)
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closing:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if isDotted(w.root, ev.Name) {
				continue
			}
			w.schedule(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// schedule (re)starts the debounce timer for path; firing no sooner than
// DebounceInterval after the last raw event for that path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.cfg.DebounceInterval, func() {
		w.settle(path)
	})
}

// settle classifies the current state of path and, if a watchable
// directory was newly created below it, registers it with the notifier.
func (w *Watcher) settle(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			_ = w.fsw.Add(path)
			w.emit(Event{Kind: DirectoryCreated, Path: path})
			return
		}
		if w.matchesBookFile(path, info.Size()) {
			w.emit(Event{Kind: NewBookFile, Path: path})
		}
		return
	}

	if w.matchesExtension(path) {
		w.emit(Event{Kind: BookFileRemoved, Path: path})
	} else {
		w.emit(Event{Kind: DirectoryRemoved, Path: path})
	}
}

func (w *Watcher) matchesExtension(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range w.cfg.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) matchesBookFile(path string, size int64) bool {
	return w.matchesExtension(path) && size >= w.cfg.MinFileSizeBytes
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.closing:
	}
}
