// Package migrate imports legacy locally-stored RecOrder logs into the
// canonical store.
//
// Earlier versions of the app persisted the log as a JSON blob in a local
// scratch directory. The migrator runs once: it finds the newest legacy
// blob, replays its records into the store, and deletes the blob so the
// procedure never re-runs. Per-record failures are recorded and skipped;
// the batch is deliberately not transactional, matching the source data's
// lack of exactly-once guarantees.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dogfolk/recorder/internal/journal"
	"github.com/dogfolk/recorder/internal/store"
)

// State is the migration lifecycle state.
type State string

const (
	StateNotStarted State = "not_started"
	StateMigrating  State = "migrating"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Legacy blob file names, newest format first. The formats are mutually
// exclusive: when both files exist only the newer one is migrated, but both
// are removed after a successful pass.
const (
	FileV2 = "recorder-log.json"
	FileV1 = "hotdog-log.json"
)

// recordV2 is the newer legacy schema, which carries completion state.
type recordV2 struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Toppings    []string   `json:"toppings"`
}

// recordV1 is the oldest legacy schema. It predates the completion flag;
// its records are migrated as already consumed, with the completion
// timestamp set to the creation timestamp.
type recordV1 struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Toppings  []string  `json:"toppings"`
}

// RecordError describes a single legacy record that failed to migrate.
type RecordError struct {
	RecordID string
	Err      error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %q: %v", e.RecordID, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// Report summarizes a migration run.
type Report struct {
	State    State
	Source   string // blob file migrated; empty when nothing was found
	Scanned  int
	Migrated int
	Failures []RecordError
}

// Migrator replays legacy blobs from LegacyDir into Store. Journal and Log
// are optional; a nil journal emits nothing and a nil log falls back to the
// logrus standard logger.
type Migrator struct {
	Store     *store.Store
	LegacyDir string
	Journal   *journal.Emitter
	Log       *logrus.Logger
}

// Run executes the one-time migration. When no legacy blob exists it is a
// no-op returning a Done report. Per-record failures do not abort the pass;
// the blob files are deleted only after the full pass completes, so an
// interrupted run re-imports everything on restart (accepted weakness of
// the legacy format: records carry no dedup key once migrated).
func (m *Migrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{State: StateNotStarted}

	source, records, err := m.loadBlob()
	if err != nil {
		report.State = StateFailed
		return report, err
	}
	if source == "" {
		report.State = StateDone
		return report, nil
	}

	report.State = StateMigrating
	report.Source = source
	report.Scanned = len(records)

	m.emit(journal.Event{Kind: journal.KindMigrationStart, Data: map[string]any{
		"source":  source,
		"records": len(records),
	}})

	for _, rec := range records {
		entry, err := m.toEntry(ctx, rec)
		if err == nil {
			err = m.Store.InsertEntry(ctx, entry)
		}
		if err != nil {
			report.Failures = append(report.Failures, RecordError{RecordID: rec.ID, Err: err})
			m.logger().WithError(err).WithField("record", rec.ID).Warn("legacy record skipped")
			m.emit(journal.Event{Kind: journal.KindMigrationRecordError, EntryID: rec.ID, Data: err.Error()})
			continue
		}
		report.Migrated++
		m.emit(journal.Event{Kind: journal.KindMigrationRecord, EntryID: entry.ID})
	}

	// Full pass complete: remove both legacy blobs so the migration never
	// re-runs. Removal failure leaves the blob in place for a retry.
	if err := m.removeBlobs(); err != nil {
		report.State = StateFailed
		return report, err
	}

	report.State = StateDone
	m.emit(journal.Event{Kind: journal.KindMigrationDone, Data: map[string]any{
		"migrated": report.Migrated,
		"failed":   len(report.Failures),
	}})
	return report, nil
}

// loadBlob locates and parses the newest legacy blob. It returns an empty
// source when no blob exists.
func (m *Migrator) loadBlob() (string, []recordV2, error) {
	v2Path := filepath.Join(m.LegacyDir, FileV2)
	if data, err := os.ReadFile(v2Path); err == nil {
		var records []recordV2
		if err := json.Unmarshal(data, &records); err != nil {
			return "", nil, fmt.Errorf("migrate: parse %s: %w", v2Path, err)
		}
		return v2Path, records, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", nil, fmt.Errorf("migrate: read %s: %w", v2Path, err)
	}

	v1Path := filepath.Join(m.LegacyDir, FileV1)
	data, err := os.ReadFile(v1Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("migrate: read %s: %w", v1Path, err)
	}
	var old []recordV1
	if err := json.Unmarshal(data, &old); err != nil {
		return "", nil, fmt.Errorf("migrate: parse %s: %w", v1Path, err)
	}

	// Lift v1 records into the v2 shape: treat old data as already consumed.
	records := make([]recordV2, 0, len(old))
	for _, r := range old {
		at := r.CreatedAt
		records = append(records, recordV2{
			ID:          r.ID,
			CreatedAt:   r.CreatedAt,
			Completed:   true,
			CompletedAt: &at,
			Toppings:    r.Toppings,
		})
	}
	return v1Path, records, nil
}

// toEntry converts a legacy record to a canonical entry. Free-text topping
// names are resolved against the catalog by exact match; unmatched names
// are dropped rather than auto-created, so an entry may come out plain.
func (m *Migrator) toEntry(ctx context.Context, rec recordV2) (*store.Entry, error) {
	var toppings []store.Topping
	for _, name := range rec.Toppings {
		t, err := m.Store.ToppingByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if t == nil {
			m.logger().WithField("topping", name).Debug("legacy topping not in catalog, dropped")
			continue
		}
		toppings = append(toppings, *t)
	}

	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	// Completion flag and timestamp must travel together.
	completedAt := rec.CompletedAt
	if rec.Completed && completedAt == nil {
		at := rec.CreatedAt
		completedAt = &at
	}
	if !rec.Completed {
		completedAt = nil
	}

	return &store.Entry{
		ID:          id,
		CreatedAt:   rec.CreatedAt,
		Completed:   rec.Completed,
		CompletedAt: completedAt,
		Toppings:    toppings,
	}, nil
}

func (m *Migrator) removeBlobs() error {
	for _, name := range []string{FileV2, FileV1} {
		path := filepath.Join(m.LegacyDir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("migrate: remove legacy blob %s: %w", path, err)
		}
	}
	return nil
}

func (m *Migrator) emit(evt journal.Event) {
	if err := m.Journal.Emit(evt); err != nil {
		m.logger().WithError(err).Warn("journal write failed")
	}
}

func (m *Migrator) logger() *logrus.Logger {
	if m.Log != nil {
		return m.Log
	}
	return logrus.StandardLogger()
}
