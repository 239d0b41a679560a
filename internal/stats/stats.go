// Package stats derives aggregate statistics from entry snapshots.
//
// Every function is pure: it reads a []store.Entry snapshot, mutates
// nothing, and is safe to call concurrently. Callers hand in a single
// consistent snapshot (typically store.Entries), so results never mix
// partial updates.
package stats

import (
	"sort"
	"time"

	"github.com/dogfolk/recorder/internal/store"
)

// Bucket is one row of a topping frequency table.
type Bucket struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// TotalCount returns the number of entries in the snapshot.
func TotalCount(entries []store.Entry) int {
	return len(entries)
}

// UniqueToppings counts distinct toppings (by name) appearing in at least
// one entry. The plain sentinel does not count as a topping.
func UniqueToppings(entries []store.Entry) int {
	seen := make(map[string]struct{})
	for _, e := range entries {
		for _, t := range e.Toppings {
			seen[t.Name] = struct{}{}
		}
	}
	return len(seen)
}

// Frequency returns, for each topping appearing in at least one entry, the
// number of entries containing it. Entries with no toppings are counted
// under the store.PlainLabel sentinel bucket. The result is sorted by count
// descending; ties keep discovery order (first appearance while scanning
// entries in snapshot order), so identical input always yields identical
// output.
func Frequency(entries []store.Entry) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)

	bump := func(label, emoji string) {
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{Label: label, Emoji: emoji})
		}
		buckets[i].Count++
	}

	for _, e := range entries {
		if len(e.Toppings) == 0 {
			bump(store.PlainLabel, store.PlainEmoji)
			continue
		}
		for _, t := range e.Toppings {
			bump(t.Name, t.Emoji)
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return buckets
}

// Top returns the first n buckets of Frequency. n larger than the table
// returns the whole table; n <= 0 returns nil.
func Top(entries []store.Entry, n int) []Bucket {
	if n <= 0 {
		return nil
	}
	freq := Frequency(entries)
	if n > len(freq) {
		n = len(freq)
	}
	return freq[:n]
}

// Hourly returns a 24-bucket histogram of entries by local-time hour of
// creation. Local time, not UTC: the histogram answers "when do I eat",
// which only makes sense in the recorder's own timezone.
func Hourly(entries []store.Entry) [24]int {
	var hist [24]int
	for _, e := range entries {
		hist[e.CreatedAt.In(time.Local).Hour()]++
	}
	return hist
}

// Pending returns the entries not yet completed, preserving snapshot order.
func Pending(entries []store.Entry) []store.Entry {
	var out []store.Entry
	for _, e := range entries {
		if !e.Completed {
			out = append(out, e)
		}
	}
	return out
}

// Completed returns the completed entries, preserving snapshot order.
func Completed(entries []store.Entry) []store.Entry {
	var out []store.Entry
	for _, e := range entries {
		if e.Completed {
			out = append(out, e)
		}
	}
	return out
}
