package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flatdb/flatdb/internal/config"
	"github.com/flatdb/flatdb/internal/export"
	"github.com/flatdb/flatdb/internal/schema"
	"github.com/flatdb/flatdb/internal/storage"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <table> <file.db>",
	Short: "Export a table's records to a SQLite database",
	Long: `Export one table's record set into a SQLite database file.

The JSON documents remain the source of truth; the exported file is a
snapshot for downstream SQL tooling.

Examples:
  flatdb export users users.db`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	table, dest := args[0], args[1]

	root, err := config.Root()
	if err != nil {
		fail(ExitConfigError, "resolving workspace root: %v", err)
	}
	global, err := config.LoadGlobal()
	if err != nil {
		fail(ExitConfigError, "%v", err)
	}

	registry, err := schema.Load(global.MetaPath(root))
	if err != nil {
		fail(ExitDataError, "%v", err)
	}
	tbl, err := registry.Table(table)
	if err != nil {
		fail(ExitError, "%v", err)
	}

	store := storage.New(global.DataPath(root))
	records, err := store.ReadTable(table)
	if err != nil {
		fail(ExitDataError, "%v", err)
	}

	n, err := export.Table(table, tbl, records, dest)
	if err != nil {
		fail(ExitError, "exporting %q: %v", table, err)
	}

	fmt.Printf("Exported %d records from %q to %s\n", n, table, dest)
	return nil
}
