package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the log and reprint stats on every change",
	Long: `Watches the database files for writes (from this or any other recorder
process) and reprints the aggregate view after each change. Bursts of
writes inside the debounce window collapse into a single refresh. Stop
with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Int("top", 3, "number of top toppings to show")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	topN, _ := cmd.Flags().GetInt("top")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()

	// Full re-fetch on every notification: reload the snapshot and replace
	// the display wholesale. A refresh that fails leaves the previous
	// output standing until the next change.
	refetch := func() {
		entries, err := s.store.Entries(ctx)
		if err != nil {
			logrus.WithError(err).Warn("refresh failed")
			return
		}
		fmt.Fprintln(out)
		printStats(out, entries, topN)
	}

	w, err := watch.NewWatcher(s.cfg.DBPath, s.cfg.DebounceWindow(), refetch, logrus.StandardLogger())
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	refetch()
	fmt.Fprintln(out, "\nwatching for changes (Ctrl-C to stop)")
	<-ctx.Done()
	return nil
}
