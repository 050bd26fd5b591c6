package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mogusu300/b2zi-merchant/config"
	"github.com/mogusu300/b2zi-merchant/database/seeders"
	"github.com/mogusu300/b2zi-merchant/pkg/database"
	"github.com/mogusu300/b2zi-merchant/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.Connect()
}

// b2zi migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close() //nolint:errcheck
		fmt.Println("Running migrations…")
		return migration.New(database.DB).Run()
	},
}

// b2zi migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close() //nolint:errcheck
		fmt.Println("Rolling back last batch…")
		return migration.New(database.DB).Rollback()
	},
}

// b2zi migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close() //nolint:errcheck

		states, err := migration.New(database.DB).Status()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tSTATUS\tBATCH")
		for _, st := range states {
			if st.Applied() {
				fmt.Fprintf(w, "%s\tRan\t%d\n", st.Name, st.Batch)
			} else {
				fmt.Fprintf(w, "%s\tPending\t-\n", st.Name)
			}
		}
		return w.Flush()
	},
}

// b2zi seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo merchants, customers and products",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close() //nolint:errcheck
		fmt.Println("Running seeders…")
		return seeders.RunAll(database.DB, os.Stdout)
	},
}
