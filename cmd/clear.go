package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/journal"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every entry and reset the catalog to the seed set",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Fprint(cmd.OutOrStdout(), "this wipes the whole log; type y to continue: ")
		var answer string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.store.ClearAll(cmd.Context()); err != nil {
		return err
	}
	s.emit(journal.KindStoreCleared, "", nil)
	fmt.Fprintln(cmd.OutOrStdout(), "log cleared, catalog reset")
	return nil
}
