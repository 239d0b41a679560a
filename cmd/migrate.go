package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dogfolk/recorder/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import legacy local logs into the store",
	Long: `Runs the one-time legacy migration. Earlier RecOrder versions kept the
log as a JSON blob under the legacy directory; this replays those records
into the database and deletes the blob so it never re-runs. Without a blob
the command is a no-op.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	m := &migrate.Migrator{
		Store:     s.store,
		LegacyDir: s.cfg.LegacyDir,
		Journal:   s.journal,
		Log:       logrus.StandardLogger(),
	}

	report, err := m.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if report.Source == "" {
		fmt.Fprintln(out, "no legacy log found, nothing to do")
		return nil
	}

	fmt.Fprintf(out, "migrated %d/%d records from %s\n", report.Migrated, report.Scanned, report.Source)
	for _, f := range report.Failures {
		fmt.Fprintf(out, "  skipped %s: %v\n", f.RecordID, f.Err)
	}
	return nil
}
