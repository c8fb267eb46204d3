// Package watch reports changes to a single file.
//
// The parent directory is watched rather than the file itself so that
// editors and deploy tools that replace the file by rename are seen. Bursts
// of events are debounced into one notification.
package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when a Watcher is created with a zero debounce.
const DefaultDebounce = 250 * time.Millisecond

// Event is one debounced change of the watched file.
type Event struct {
	Path    string
	Removed bool // The file no longer exists
}

// Watcher monitors one file using fsnotify.
type Watcher struct {
	Path    string
	Events  <-chan Event // Read-only external channel
	Errors  <-chan error
	events  chan Event
	errors  chan error
	done    chan struct{}
	watcher *fsnotify.Watcher

	debounce time.Duration
}

// New creates a watcher for path.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	events := make(chan Event, 4)
	errs := make(chan error, 4)
	return &Watcher{
		Path:     abs,
		Events:   events,
		Errors:   errs,
		events:   events,
		errors:   errs,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: debounce,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and its channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.events)
	close(w.errors)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		pending bool
		last    time.Time
	)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = true
				last = time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(last) >= w.debounce {
				pending = false
				w.emit()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default: // Drop when nobody is listening.
			}
		}
	}
}

func (w *Watcher) emit() {
	_, err := os.Stat(w.Path)
	select {
	case w.events <- Event{Path: w.Path, Removed: os.IsNotExist(err)}:
	default:
		// A notification is already queued; the reader will reload anyway.
	}
}
