package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/izposoja/internal/db"
)

func newMigrateCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}

			database, err := db.Open(cfg.DB)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return err
			}
			version, dirty, err := db.SchemaVersion(database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
}
