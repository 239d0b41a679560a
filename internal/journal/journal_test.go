package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// readEvents parses every JSONL line in the file at path.
func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var evt Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			t.Fatalf("parse line %q: %v", sc.Text(), err)
		}
		events = append(events, evt)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan journal: %v", err)
	}
	return events
}

func TestEmitter(t *testing.T) {
	t.Parallel()

	t.Run("writes one JSON object per line", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "journal.jsonl")
		e, err := NewEmitter(path)
		if err != nil {
			t.Fatalf("NewEmitter: %v", err)
		}

		if err := e.Emit(Event{Kind: KindEntryAdded, EntryID: "e1"}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
		if err := e.Emit(Event{Kind: KindEntryDeleted, EntryID: "e1"}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
		if err := e.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		events := readEvents(t, path)
		if len(events) != 2 {
			t.Fatalf("len(events) = %d, want 2", len(events))
		}
		if events[0].Kind != KindEntryAdded || events[0].EntryID != "e1" {
			t.Errorf("events[0] = %+v, want entry_added/e1", events[0])
		}
		if events[0].Timestamp.IsZero() {
			t.Error("events[0].Timestamp is zero, want stamped")
		}
	})

	t.Run("appends to an existing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "journal.jsonl")

		for range 2 {
			e, err := NewEmitter(path)
			if err != nil {
				t.Fatalf("NewEmitter: %v", err)
			}
			if err := e.Emit(Event{Kind: KindStoreCleared}); err != nil {
				t.Fatalf("Emit: %v", err)
			}
			e.Close()
		}

		if events := readEvents(t, path); len(events) != 2 {
			t.Errorf("len(events) = %d, want 2 across reopens", len(events))
		}
	})

	t.Run("nil emitter is a no-op", func(t *testing.T) {
		t.Parallel()
		var e *Emitter
		if err := e.Emit(Event{Kind: KindEntryAdded}); err != nil {
			t.Errorf("nil Emit = %v, want nil", err)
		}
		if err := e.Close(); err != nil {
			t.Errorf("nil Close = %v, want nil", err)
		}
	})

	t.Run("concurrent emits produce whole lines", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "journal.jsonl")
		e, err := NewEmitter(path)
		if err != nil {
			t.Fatalf("NewEmitter: %v", err)
		}

		const goroutines = 10
		const perGoroutine = 20
		var wg sync.WaitGroup
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perGoroutine {
					if err := e.Emit(Event{Kind: KindEntryAdded}); err != nil {
						t.Errorf("Emit: %v", err)
					}
				}
			}()
		}
		wg.Wait()
		e.Close()

		if events := readEvents(t, path); len(events) != goroutines*perGoroutine {
			t.Errorf("len(events) = %d, want %d", len(events), goroutines*perGoroutine)
		}
	})
}
