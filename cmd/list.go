package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/stats"
	"github.com/dogfolk/recorder/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged entries",
	Long: `Lists entries ordered by creation time. Pending entries print before
completed ones; within each group the order is creation time, then ID.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().Bool("pending", false, "only entries not yet eaten")
	listCmd.Flags().Bool("done", false, "only completed entries")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	pendingOnly, _ := cmd.Flags().GetBool("pending")
	doneOnly, _ := cmd.Flags().GetBool("done")
	if pendingOnly && doneOnly {
		return fmt.Errorf("--pending and --done are mutually exclusive")
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.store.Entries(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "no entries yet — log one with 'recorder add'")
		return nil
	}

	if !doneOnly {
		printEntries(out, stats.Pending(entries))
	}
	if !pendingOnly {
		printEntries(out, stats.Completed(entries))
	}
	return nil
}

func printEntries(out io.Writer, entries []store.Entry) {
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			statusMark(e),
			entryLine(e))
	}
}

func statusMark(e store.Entry) string {
	if e.Completed {
		return "[x]"
	}
	return "[ ]"
}

// entryLine renders an entry's toppings, falling back to the plain label
// for legacy zero-topping entries.
func entryLine(e store.Entry) string {
	if len(e.Toppings) == 0 {
		return store.PlainEmoji + " " + store.PlainLabel + "  (" + e.ID + ")"
	}
	parts := make([]string, 0, len(e.Toppings))
	for _, t := range e.Toppings {
		parts = append(parts, t.Emoji+" "+t.Name)
	}
	return strings.Join(parts, ", ") + "  (" + e.ID + ")"
}
