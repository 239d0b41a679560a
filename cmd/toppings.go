package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/journal"
	"github.com/dogfolk/recorder/internal/store"
)

var toppingsCmd = &cobra.Command{
	Use:   "toppings",
	Short: "Show or extend the topping catalog",
	RunE:  runToppingsList,
}

func init() {
	addToppingCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a topping to the catalog",
		Long: `Adds a topping with the next display order. Adding an existing name is
a no-op and prints the existing record.`,
		Args: cobra.ExactArgs(1),
		RunE: runToppingsAdd,
	}
	addToppingCmd.Flags().String("emoji", "", "emoji tag for the topping")

	toppingsCmd.AddCommand(addToppingCmd)
	rootCmd.AddCommand(toppingsCmd)
}

func runToppingsList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	toppings, err := s.store.Toppings(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, t := range toppings {
		fmt.Fprintf(out, "%2d  %s %s\n", t.DisplayOrder, t.Emoji, t.Name)
	}
	return nil
}

func runToppingsAdd(cmd *cobra.Command, args []string) error {
	emoji, _ := cmd.Flags().GetString("emoji")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	name := args[0]
	existing, err := s.store.ToppingByName(cmd.Context(), name)
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "already in catalog: %s %s\n", existing.Emoji, existing.Name)
		return nil
	}

	var t *store.Topping
	if emoji == "" {
		t, err = s.store.EnsureTopping(cmd.Context(), name)
	} else {
		t, err = s.store.AddCustomTopping(cmd.Context(), name, emoji)
	}
	if err != nil {
		return err
	}
	s.emit(journal.KindToppingAdded, "", t.Name)
	fmt.Fprintf(cmd.OutOrStdout(), "added %s %s (order %d)\n", t.Emoji, t.Name, t.DisplayOrder)
	return nil
}
