package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/stats"
	"github.com/dogfolk/recorder/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics over the log",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Int("top", 3, "number of top toppings to show")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	topN, _ := cmd.Flags().GetInt("top")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.store.Entries(cmd.Context())
	if err != nil {
		return err
	}

	printStats(cmd.OutOrStdout(), entries, topN)
	return nil
}

// printStats renders the aggregate view over one entry snapshot.
func printStats(out io.Writer, entries []store.Entry, topN int) {
	fmt.Fprintf(out, "dogs logged:     %d\n", stats.TotalCount(entries))
	fmt.Fprintf(out, "unique toppings: %d\n", stats.UniqueToppings(entries))

	if top := stats.Top(entries, topN); len(top) > 0 {
		fmt.Fprintf(out, "\ntop toppings\n")
		for _, b := range top {
			fmt.Fprintf(out, "  %s %-12s %d\n", b.Emoji, b.Label, b.Count)
		}
	}

	hist := stats.Hourly(entries)
	max := 0
	for _, n := range hist {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return
	}

	fmt.Fprintf(out, "\nby hour\n")
	for hour, n := range hist {
		if n == 0 {
			continue
		}
		fmt.Fprintf(out, "  %02d:00  %s %d\n", hour, strings.Repeat("█", n*20/max), n)
	}
}
