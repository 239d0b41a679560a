package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/journal"
)

var doneCmd = &cobra.Command{
	Use:   "done <entry-id>",
	Short: "Mark an entry eaten (or un-mark it with --undo)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

func init() {
	doneCmd.Flags().Bool("undo", false, "clear the eaten mark instead of setting it")
	rootCmd.AddCommand(doneCmd)
}

func runDone(cmd *cobra.Command, args []string) error {
	undo, _ := cmd.Flags().GetBool("undo")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id := args[0]
	entry, err := s.store.Entry(cmd.Context(), id)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "no entry %s\n", id)
		return nil
	}

	if undo {
		if err := s.store.UncompleteEntry(cmd.Context(), id); err != nil {
			return err
		}
		s.emit(journal.KindEntryUncompleted, id, nil)
		fmt.Fprintf(cmd.OutOrStdout(), "entry %s back to pending\n", id)
		return nil
	}

	if err := s.store.CompleteEntry(cmd.Context(), id); err != nil {
		return err
	}
	s.emit(journal.KindEntryCompleted, id, nil)
	fmt.Fprintf(cmd.OutOrStdout(), "entry %s eaten\n", id)
	return nil
}
