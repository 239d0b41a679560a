package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS toppings (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL UNIQUE,
    emoji         TEXT NOT NULL DEFAULT '',
    display_order INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entries (
    id           TEXT PRIMARY KEY,
    created_at   TIMESTAMP NOT NULL,
    completed    BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entry_toppings (
    entry_id   TEXT NOT NULL,
    topping_id TEXT NOT NULL,
    position   INTEGER NOT NULL,
    PRIMARY KEY (entry_id, topping_id),
    FOREIGN KEY (entry_id) REFERENCES entries(id),
    FOREIGN KEY (topping_id) REFERENCES toppings(id)
);
`

// defaultToppingEmoji tags toppings created through EnsureTopping, which has
// no emoji input.
const defaultToppingEmoji = "🧂"

// Store is the SQLite-backed entry store and topping catalog.
type Store struct {
	db       *sql.DB
	seed     []SeedTopping
	notifier Notifier
}

// Open opens (or creates) the recorder database at dbPath, enables WAL mode
// and busy timeout, creates the schema tables if they do not exist, and
// seeds the topping catalog with the default set when it is empty.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	return OpenSeeded(ctx, dbPath, DefaultCatalog())
}

// OpenSeeded is Open with a caller-provided catalog seed. The seed is also
// what ClearAll resets the catalog to.
func OpenSeeded(ctx context.Context, dbPath string, seed []SeedTopping) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// Limit to one connection. SQLite only supports a single writer; using
	// one connection avoids SQLITE_BUSY contention between pooled connections
	// and serializes mutations, which the entry collection requires.
	db.SetMaxOpenConns(1)

	// WAL mode — readers never block writers, writers never block readers.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}

	// Busy timeout avoids SQLITE_BUSY under concurrent access from external processes.
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	s := &Store{db: db, seed: seed}
	if err := s.seedCatalog(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// SetNotifier installs a change notifier called after every successful
// mutation. Pass nil to disable.
func (s *Store) SetNotifier(n Notifier) {
	s.notifier = n
}

// seedCatalog inserts the seed toppings when the catalog is empty.
// Display order follows seed order.
func (s *Store) seedCatalog(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM toppings").Scan(&n); err != nil {
		return fmt.Errorf("store: count toppings: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin seed tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `INSERT INTO toppings (id, name, emoji, display_order) VALUES (?, ?, ?, ?)`
	for i, t := range s.seed {
		if _, err := tx.ExecContext(ctx, q, uuid.NewString(), t.Name, t.Emoji, i); err != nil {
			return fmt.Errorf("store: seed topping %q: %w", t.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit seed: %w", err)
	}
	return nil
}

// AddEntry creates an entry with CreatedAt set to the current time and the
// given catalog toppings attached in selection order. An empty selection
// returns ErrEmptySelection and leaves the store unchanged.
func (s *Store) AddEntry(ctx context.Context, toppingIDs []string) (*Entry, error) {
	if len(toppingIDs) == 0 {
		return nil, ErrEmptySelection
	}

	toppings := make([]Topping, 0, len(toppingIDs))
	for _, id := range toppingIDs {
		t, err := s.toppingByID(ctx, id)
		if err != nil {
			return nil, err
		}
		toppings = append(toppings, *t)
	}

	e := &Entry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Completed: false,
		Toppings:  toppings,
	}
	if err := s.InsertEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// InsertEntry inserts a fully-formed entry, preserving its ID, timestamps,
// and completion state. Used by AddEntry and by the legacy migration, which
// carries original creation timestamps.
func (s *Store) InsertEntry(ctx context.Context, e *Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin entry tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var completedAt any
	if e.CompletedAt != nil {
		completedAt = formatTime(*e.CompletedAt)
	}
	const insEntry = `INSERT INTO entries (id, created_at, completed, completed_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insEntry, e.ID, formatTime(e.CreatedAt), e.Completed, completedAt); err != nil {
		return fmt.Errorf("store: insert entry %q: %w", e.ID, err)
	}

	const insRef = `INSERT INTO entry_toppings (entry_id, topping_id, position) VALUES (?, ?, ?)`
	for i, t := range e.Toppings {
		if _, err := tx.ExecContext(ctx, insRef, e.ID, t.ID, i); err != nil {
			return fmt.Errorf("store: attach topping %q to entry %q: %w", t.Name, e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit entry: %w", err)
	}
	s.notify()
	return nil
}

// DeleteEntry removes the entry with the given ID. Deleting an absent entry
// is a no-op.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin delete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM entry_toppings WHERE entry_id = ?", id); err != nil {
		return fmt.Errorf("store: delete entry toppings %q: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("store: delete entry %q: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete entry rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit delete: %w", err)
	}
	if rows > 0 {
		s.notify()
	}
	return nil
}

// CompleteEntry marks the entry consumed, setting the completion flag and
// timestamp together. Completing an absent entry is a no-op.
func (s *Store) CompleteEntry(ctx context.Context, id string) error {
	return s.setCompletion(ctx, id, true)
}

// UncompleteEntry clears the completion flag and timestamp together.
// Unknown IDs are a no-op.
func (s *Store) UncompleteEntry(ctx context.Context, id string) error {
	return s.setCompletion(ctx, id, false)
}

func (s *Store) setCompletion(ctx context.Context, id string, done bool) error {
	var completedAt any
	if done {
		completedAt = formatTime(time.Now())
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE entries SET completed = ?, completed_at = ? WHERE id = ?", done, completedAt, id)
	if err != nil {
		return fmt.Errorf("store: set completion %q=%v: %w", id, done, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: set completion rows affected: %w", err)
	}
	if rows > 0 {
		s.notify()
	}
	return nil
}

// ClearAll empties the entry collection and resets the topping catalog to
// the seed set.
func (s *Store) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin clear tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, table := range []string{"entry_toppings", "entries", "toppings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("store: clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit clear: %w", err)
	}

	if err := s.seedCatalog(ctx); err != nil {
		return err
	}
	s.notify()
	return nil
}

// EnsureTopping returns the catalog topping with the given name, creating it
// with the next display order when absent. Matching is exact and
// case-sensitive.
func (s *Store) EnsureTopping(ctx context.Context, name string) (*Topping, error) {
	if t, err := s.ToppingByName(ctx, name); err != nil {
		return nil, err
	} else if t != nil {
		return t, nil
	}
	return s.AddCustomTopping(ctx, name, defaultToppingEmoji)
}

// AddCustomTopping adds a topping to the catalog, assigning the next display
// order (one greater than the current maximum, or 0 for an empty catalog).
// Adding a name that already exists returns the existing record.
func (s *Store) AddCustomTopping(ctx context.Context, name, emoji string) (*Topping, error) {
	if t, err := s.ToppingByName(ctx, name); err != nil {
		return nil, err
	} else if t != nil {
		return t, nil
	}

	var order int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(display_order) + 1, 0) FROM toppings").Scan(&order); err != nil {
		return nil, fmt.Errorf("store: next display order: %w", err)
	}

	t := &Topping{
		ID:           uuid.NewString(),
		Name:         name,
		Emoji:        emoji,
		DisplayOrder: order,
		CreatedAt:    time.Now(),
	}
	const q = `INSERT INTO toppings (id, name, emoji, display_order, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, t.ID, t.Name, t.Emoji, t.DisplayOrder, formatTime(t.CreatedAt)); err != nil {
		return nil, fmt.Errorf("store: add topping %q: %w", name, err)
	}
	s.notify()
	return t, nil
}

// Toppings returns the catalog ordered for display.
func (s *Store) Toppings(ctx context.Context) ([]Topping, error) {
	const q = `SELECT id, name, emoji, display_order, created_at FROM toppings
		ORDER BY display_order, name`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: query toppings: %w", err)
	}
	defer rows.Close()

	var result []Topping
	for rows.Next() {
		t, err := scanTopping(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate toppings: %w", err)
	}
	return result, nil
}

// ToppingByName returns the topping with the exact name, or nil when absent.
func (s *Store) ToppingByName(ctx context.Context, name string) (*Topping, error) {
	const q = `SELECT id, name, emoji, display_order, created_at FROM toppings WHERE name = ?`
	row := s.db.QueryRowContext(ctx, q, name)
	t, err := scanTopping(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) toppingByID(ctx context.Context, id string) (*Topping, error) {
	const q = `SELECT id, name, emoji, display_order, created_at FROM toppings WHERE id = ?`
	t, err := scanTopping(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopping, id)
	}
	return t, err
}

// Entries returns every entry with its toppings attached, ordered by
// creation time ascending with ID as tie-break so equal timestamps sort
// deterministically.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	const q = `SELECT id, created_at, completed, completed_at FROM entries
		ORDER BY created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	index := make(map[string]int)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	// Attach toppings in one pass over the join table.
	const jq = `SELECT et.entry_id, t.id, t.name, t.emoji, t.display_order, t.created_at
		FROM entry_toppings et JOIN toppings t ON t.id = et.topping_id
		ORDER BY et.entry_id, et.position`
	jrows, err := s.db.QueryContext(ctx, jq)
	if err != nil {
		return nil, fmt.Errorf("store: query entry toppings: %w", err)
	}
	defer jrows.Close()

	for jrows.Next() {
		var entryID, ts string
		var t Topping
		if err := jrows.Scan(&entryID, &t.ID, &t.Name, &t.Emoji, &t.DisplayOrder, &ts); err != nil {
			return nil, fmt.Errorf("store: scan entry topping: %w", err)
		}
		createdAt, err := parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("store: parse topping timestamp: %w", err)
		}
		t.CreatedAt = createdAt
		if i, ok := index[entryID]; ok {
			entries[i].Toppings = append(entries[i].Toppings, t)
		}
	}
	if err := jrows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate entry toppings: %w", err)
	}
	return entries, nil
}

// Entry returns a single entry with its toppings, or nil when absent.
func (s *Store) Entry(ctx context.Context, id string) (*Entry, error) {
	const q = `SELECT id, created_at, completed, completed_at FROM entries WHERE id = ?`
	e, err := scanEntry(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const jq = `SELECT t.id, t.name, t.emoji, t.display_order, t.created_at
		FROM entry_toppings et JOIN toppings t ON t.id = et.topping_id
		WHERE et.entry_id = ? ORDER BY et.position`
	rows, err := s.db.QueryContext(ctx, jq, id)
	if err != nil {
		return nil, fmt.Errorf("store: query toppings for entry %q: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTopping(rows)
		if err != nil {
			return nil, err
		}
		e.Toppings = append(e.Toppings, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate toppings for entry %q: %w", id, err)
	}
	return e, nil
}

// Count returns the number of entries in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count entries: %w", err)
	}
	return n, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) notify() {
	if s.notifier != nil {
		s.notifier.Notify()
	}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTopping(row scanner) (*Topping, error) {
	var t Topping
	var ts string
	if err := row.Scan(&t.ID, &t.Name, &t.Emoji, &t.DisplayOrder, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan topping: %w", err)
	}
	createdAt, err := parseTimestamp(ts)
	if err != nil {
		return nil, fmt.Errorf("store: parse topping timestamp: %w", err)
	}
	t.CreatedAt = createdAt
	return &t, nil
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var created string
	var completed sql.NullString
	if err := row.Scan(&e.ID, &created, &e.Completed, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan entry: %w", err)
	}
	createdAt, err := parseTimestamp(created)
	if err != nil {
		return nil, fmt.Errorf("store: parse entry timestamp: %w", err)
	}
	e.CreatedAt = createdAt
	if completed.Valid {
		t, err := parseTimestamp(completed.String)
		if err != nil {
			return nil, fmt.Errorf("store: parse completion timestamp: %w", err)
		}
		e.CompletedAt = &t
	}
	return &e, nil
}

// storedTimeLayout is RFC 3339 with fixed-width nanoseconds, in UTC.
// Fixed width keeps lexical ordering in SQLite identical to chronological
// ordering, which the entries read view relies on.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// timestampFormats lists the formats timestamp columns may hold:
// RFC 3339 for rows this store writes, the space-separated DateTime format
// for SQLite's CURRENT_TIMESTAMP defaults.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
}

// parseTimestamp attempts to parse a timestamp string using known formats.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
