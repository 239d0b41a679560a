// Package store provides the canonical entry store for RecOrder.
//
// Entries (logged consumption events) and the topping catalog live in a
// local SQLite database in WAL mode. The store owns its collection
// exclusively: all mutations go through it, and every successful mutation
// fires the optional change notifier so readers can re-fetch full state.
package store

import (
	"errors"
	"time"
)

// PlainLabel is the aggregation label for entries with no toppings. It is
// applied retroactively during aggregation; an entry can never be created
// with an empty selection.
const PlainLabel = "Plain"

// PlainEmoji tags the plain bucket in displays.
const PlainEmoji = "🌭"

// ErrEmptySelection is returned by AddEntry when no toppings are selected.
// It is a validation error, never fatal: store state is unchanged.
var ErrEmptySelection = errors.New("entry requires at least one topping")

// ErrUnknownTopping is returned when a referenced topping ID does not exist
// in the catalog.
var ErrUnknownTopping = errors.New("unknown topping")

// Topping is a catalog option that can be attached to an entry.
type Topping struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Emoji        string    `json:"emoji"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Entry is one logged consumption event. Toppings holds the catalog records
// referenced at creation time, in selection order; membership is immutable
// after creation. CompletedAt is non-nil exactly when Completed is true.
type Entry struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Toppings    []Topping  `json:"toppings"`
}

// Notifier receives a signal after every successful store mutation. The
// store calls Notify synchronously; implementations must not block.
type Notifier interface {
	Notify()
}
