// Package watch reacts to store changes with a debounced full re-fetch.
//
// Two drive modes are supported: the Broadcaster carries in-process
// notifications the store emits after each mutation, and the Watcher picks
// up native writes to the SQLite database files (including writes from
// other processes) via fsnotify. In both modes the response is the same:
// re-fetch everything and replace local state. There is no cancellation of
// an in-flight re-fetch; the latest one to complete wins, which is safe
// because every re-fetch reconstructs full state rather than applying
// deltas.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher monitors the SQLite database files for writes and invokes a
// re-fetch callback, debounced so bursts of row changes trigger one
// re-fetch.
type Watcher struct {
	dbPath   string
	refetch  func()
	debounce *Debouncer
	watcher  *fsnotify.Watcher
	done     chan struct{}
	log      *logrus.Logger
}

// NewWatcher creates a watcher for the database at dbPath. refetch runs on
// the watcher's goroutine after each debounce window; it must be safe to
// call repeatedly. A non-positive window uses DefaultWindow; a nil log
// falls back to the logrus standard logger.
func NewWatcher(dbPath string, window time.Duration, refetch func(), log *logrus.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Watcher{
		dbPath:   dbPath,
		refetch:  refetch,
		debounce: NewDebouncer(window),
		watcher:  fw,
		done:     make(chan struct{}),
		log:      log,
	}, nil
}

// Start begins watching the database directory for changes. Watching the
// directory rather than the file catches the -wal and -shm sidecars SQLite
// creates and recreates at runtime.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.dbPath)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(w.dbPath), err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and cancels any pending re-fetch.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	w.debounce.Stop()
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isDatabaseFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.debounce.Trigger(w.refetch)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next successful event
			// still triggers a re-fetch.
			w.log.WithError(err).Debug("watch error")
		}
	}
}

// isDatabaseFile reports whether name is the database or one of its SQLite
// sidecar files (-wal, -shm, -journal).
func (w *Watcher) isDatabaseFile(name string) bool {
	base := filepath.Base(w.dbPath)
	got := filepath.Base(name)
	switch got {
	case base, base + "-wal", base + "-shm", base + "-journal":
		return true
	}
	return false
}
