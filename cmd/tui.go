package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/store"
	"github.com/dogfolk/recorder/internal/tui"
	"github.com/dogfolk/recorder/internal/watch"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Live dashboard of the log and its stats",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	loader := func(ctx context.Context) ([]store.Entry, error) {
		return s.store.Entries(ctx)
	}
	p := tui.NewProgram(loader)

	// Mutations through this process's own store handle signal directly.
	b := watch.NewBroadcaster()
	s.store.SetNotifier(b)
	go func() {
		for range b.Subscribe() {
			p.Send(tui.MsgChanged{})
		}
	}()

	// Writes from any other recorder process nudge the dashboard to re-fetch.
	w, err := watch.NewWatcher(s.cfg.DBPath, s.cfg.DebounceWindow(), func() {
		p.Send(tui.MsgChanged{})
	}, logrus.StandardLogger())
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	_, err = p.Run()
	return err
}
