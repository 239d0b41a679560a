package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/journal"
	"github.com/dogfolk/recorder/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add <topping>...",
	Short: "Log a hot dog with the given toppings",
	Long: `Logs a consumption event. Each argument is a catalog topping name
(exact match). An entry needs at least one topping; use the catalog's
plain-dog convention only for legacy data.

  recorder add Cheese Onions`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().Bool("create", false, "add unknown topping names to the catalog instead of failing")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	create, _ := cmd.Flags().GetBool("create")
	ctx := cmd.Context()

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var ids []string
	for _, name := range args {
		var top *store.Topping
		if create {
			top, err = s.store.EnsureTopping(ctx, name)
			if err != nil {
				return err
			}
		} else {
			top, err = s.store.ToppingByName(ctx, name)
			if err != nil {
				return err
			}
			if top == nil {
				return fmt.Errorf("no topping named %q in the catalog (try 'recorder toppings' or --create)", name)
			}
		}
		ids = append(ids, top.ID)
	}

	entry, err := s.store.AddEntry(ctx, ids)
	if errors.Is(err, store.ErrEmptySelection) {
		// Validation, not failure: nothing was logged.
		fmt.Fprintln(cmd.OutOrStdout(), "pick at least one topping")
		return nil
	}
	if err != nil {
		return err
	}

	s.emit(journal.KindEntryAdded, entry.ID, args)
	fmt.Fprintf(cmd.OutOrStdout(), "logged %s %s\n", entry.ID, strings.Join(args, ", "))
	return nil
}
