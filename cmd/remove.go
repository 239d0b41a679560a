package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/journal"
)

var removeCmd = &cobra.Command{
	Use:   "remove <entry-id>",
	Short: "Delete a logged entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
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

	if err := s.store.DeleteEntry(cmd.Context(), id); err != nil {
		return err
	}
	s.emit(journal.KindEntryDeleted, id, nil)
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
	return nil
}
