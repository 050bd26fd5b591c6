// Command b2zi runs the merchant marketplace API and its maintenance tasks.
//
//	b2zi serve              start the HTTP server
//	b2zi migrate            apply pending migrations
//	b2zi migrate:rollback   undo the last batch
//	b2zi migrate:status     list migrations
//	b2zi seed               load demo data
//	b2zi route:list         print the route table
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/mogusu300/b2zi-merchant/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "b2zi",
	Short:         "b2zi merchant marketplace backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
