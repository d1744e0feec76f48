package main

import (
	"github.com/spf13/cobra"

	"legalpub/internal/database/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the legal_documents schema if it is missing",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	rt, err := openDeps(false, false)
	if err != nil {
		return err
	}
	defer rt.close()

	return migration.EnsureMigrated(cmd.Context(), rt.db, log, cfg.Database.Host)
}
