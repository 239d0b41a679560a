// Package tui renders the live RecOrder dashboard.
//
// The model holds one entry snapshot and re-fetches it wholesale whenever
// the store changes: MsgChanged (from the database watcher) and the manual
// refresh key both trigger the same full reload. Out-of-order completion of
// reloads is harmless since each one replaces the entire snapshot.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dogfolk/recorder/internal/stats"
	"github.com/dogfolk/recorder/internal/store"
)

// Loader produces a fresh entry snapshot.
type Loader func(ctx context.Context) ([]store.Entry, error)

// MsgChanged signals that the store changed and the snapshot is stale.
type MsgChanged struct{}

// MsgEntries carries a freshly loaded snapshot (or the load error).
type MsgEntries struct {
	Entries []store.Entry
	Err     error
}

// Model is the dashboard's BubbleTea model.
type Model struct {
	loader  Loader
	entries []store.Entry
	err     error
	topN    int
	width   int
	height  int
}

// NewModel creates a dashboard model backed by the given loader.
func NewModel(loader Loader) Model {
	return Model{loader: loader, topN: 3}
}

// Init loads the first snapshot.
func (m Model) Init() tea.Cmd {
	return m.refetch()
}

// Update handles keys, change signals, and snapshot arrivals.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refetch()
		}

	case MsgChanged:
		return m, m.refetch()

	case MsgEntries:
		m.entries = msg.Entries
		m.err = msg.Err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

// refetch reloads the full snapshot off the Update loop.
func (m Model) refetch() tea.Cmd {
	loader := m.loader
	return func() tea.Msg {
		entries, err := loader(context.Background())
		return MsgEntries{Entries: entries, Err: err}
	}
}

// View renders the dashboard: pending and eaten entries, then aggregates.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🌭 RecOrder"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("refresh failed: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	pending := stats.Pending(m.entries)
	eaten := stats.Completed(m.entries)

	b.WriteString(headingStyle.Render(fmt.Sprintf("pending (%d)", len(pending))))
	b.WriteString("\n")
	b.WriteString(renderEntries(pending))

	b.WriteString(headingStyle.Render(fmt.Sprintf("eaten (%d)", len(eaten))))
	b.WriteString("\n")
	b.WriteString(renderEntries(eaten))

	b.WriteString(headingStyle.Render("stats"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  total %d · unique toppings %d\n", stats.TotalCount(m.entries), stats.UniqueToppings(m.entries)))
	for _, bucket := range stats.Top(m.entries, m.topN) {
		b.WriteString(fmt.Sprintf("  %s %s ×%d\n", bucket.Emoji, bucket.Label, bucket.Count))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r refresh · q quit"))
	return b.String()
}

func renderEntries(entries []store.Entry) string {
	if len(entries) == 0 {
		return dimStyle.Render("  none") + "\n\n"
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString("  ")
		b.WriteString(e.CreatedAt.Local().Format("Jan 02 15:04"))
		b.WriteString("  ")
		b.WriteString(toppingLine(e))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func toppingLine(e store.Entry) string {
	if len(e.Toppings) == 0 {
		return store.PlainEmoji + " " + store.PlainLabel
	}
	parts := make([]string, 0, len(e.Toppings))
	for _, t := range e.Toppings {
		parts = append(parts, t.Emoji+" "+t.Name)
	}
	return strings.Join(parts, ", ")
}
