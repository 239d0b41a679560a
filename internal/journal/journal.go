// Package journal provides a JSONL event stream for recording store
// mutations and migration progress. Every add, delete, completion toggle,
// and migrated legacy record is written as a structured JSON event, making
// the log auditable and replayable.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of journal event.
const (
	KindEntryAdded           = "entry_added"
	KindEntryDeleted         = "entry_deleted"
	KindEntryCompleted       = "entry_completed"
	KindEntryUncompleted     = "entry_uncompleted"
	KindToppingAdded         = "topping_added"
	KindStoreCleared         = "store_cleared"
	KindMigrationStart       = "migration_start"
	KindMigrationRecord      = "migration_record"
	KindMigrationRecordError = "migration_record_error"
	KindMigrationDone        = "migration_done"
)

// Event represents a single journal record. Each event carries a timestamp,
// a kind tag, and an optional entry ID along with arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	EntryID   string    `json:"entry,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes journal events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event to the JSONL file, stamping the current time
// when the event carries none. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("journal: encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}
