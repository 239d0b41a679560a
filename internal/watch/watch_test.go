package watch

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestDebouncer(t *testing.T) {
	t.Parallel()

	t.Run("burst collapses to one trailing call", func(t *testing.T) {
		t.Parallel()
		d := NewDebouncer(30 * time.Millisecond)
		defer d.Stop()

		var calls atomic.Int32
		for range 10 {
			d.Trigger(func() { calls.Add(1) })
			time.Sleep(2 * time.Millisecond)
		}

		time.Sleep(100 * time.Millisecond)
		if got := calls.Load(); got != 1 {
			t.Errorf("calls = %d, want 1 (trailing edge)", got)
		}
	})

	t.Run("separated triggers each fire", func(t *testing.T) {
		t.Parallel()
		d := NewDebouncer(10 * time.Millisecond)
		defer d.Stop()

		var calls atomic.Int32
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(50 * time.Millisecond)
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(50 * time.Millisecond)

		if got := calls.Load(); got != 2 {
			t.Errorf("calls = %d, want 2", got)
		}
	})

	t.Run("stop cancels pending call", func(t *testing.T) {
		t.Parallel()
		d := NewDebouncer(20 * time.Millisecond)

		var calls atomic.Int32
		d.Trigger(func() { calls.Add(1) })
		d.Stop()

		time.Sleep(60 * time.Millisecond)
		if got := calls.Load(); got != 0 {
			t.Errorf("calls = %d after Stop, want 0", got)
		}
	})
}

func TestBroadcaster(t *testing.T) {
	t.Parallel()

	t.Run("all subscribers receive a signal", func(t *testing.T) {
		t.Parallel()
		b := NewBroadcaster()
		a := b.Subscribe()
		c := b.Subscribe()

		b.Notify()

		for name, ch := range map[string]<-chan struct{}{"a": a, "c": c} {
			select {
			case <-ch:
			case <-time.After(time.Second):
				t.Errorf("subscriber %s got no signal", name)
			}
		}
	})

	t.Run("bursts coalesce to one pending signal", func(t *testing.T) {
		t.Parallel()
		b := NewBroadcaster()
		ch := b.Subscribe()

		for range 5 {
			b.Notify()
		}

		<-ch
		select {
		case <-ch:
			t.Error("second signal pending after burst, want coalesced single signal")
		default:
		}
	})

	t.Run("notify without subscribers does not block", func(t *testing.T) {
		t.Parallel()
		NewBroadcaster().Notify()
	})
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	log := logrus.New()
	log.SetOutput(io.Discard)

	t.Run("database write triggers one debounced refetch", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "recorder.db")
		if err := os.WriteFile(dbPath, []byte("x"), 0o644); err != nil {
			t.Fatalf("seed db file: %v", err)
		}

		var calls atomic.Int32
		w, err := NewWatcher(dbPath, 50*time.Millisecond, func() { calls.Add(1) }, log)
		if err != nil {
			t.Fatalf("NewWatcher: %v", err)
		}
		if err := w.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		defer w.Stop()

		// A burst of writes to the db and its wal sidecar.
		for i := range 5 {
			if err := os.WriteFile(dbPath, []byte{byte(i)}, 0o644); err != nil {
				t.Fatalf("write db: %v", err)
			}
			if err := os.WriteFile(dbPath+"-wal", []byte{byte(i)}, 0o644); err != nil {
				t.Fatalf("write wal: %v", err)
			}
			time.Sleep(5 * time.Millisecond)
		}

		deadline := time.Now().Add(2 * time.Second)
		for calls.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		// Allow a trailing window to pass to catch extra fires.
		time.Sleep(150 * time.Millisecond)
		if got := calls.Load(); got != 1 {
			t.Errorf("refetch calls = %d, want 1 for a single burst", got)
		}
	})

	t.Run("unrelated files are ignored", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "recorder.db")

		var calls atomic.Int32
		w, err := NewWatcher(dbPath, 20*time.Millisecond, func() { calls.Add(1) }, log)
		if err != nil {
			t.Fatalf("NewWatcher: %v", err)
		}
		if err := w.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		defer w.Stop()

		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
			t.Fatalf("write unrelated: %v", err)
		}

		time.Sleep(100 * time.Millisecond)
		if got := calls.Load(); got != 0 {
			t.Errorf("refetch calls = %d for unrelated file, want 0", got)
		}
	})
}

func TestIsDatabaseFile(t *testing.T) {
	t.Parallel()

	w := &Watcher{dbPath: "/data/recorder.db"}
	for name, want := range map[string]bool{
		"/data/recorder.db":         true,
		"/data/recorder.db-wal":     true,
		"/data/recorder.db-shm":     true,
		"/data/recorder.db-journal": true,
		"/data/other.db":            false,
		"/data/recorder.db.bak":     false,
	} {
		if got := w.isDatabaseFile(name); got != want {
			t.Errorf("isDatabaseFile(%q) = %v, want %v", name, got, want)
		}
	}
}
