package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	fsstore "github.com/custodia-labs/ragbench-cli/internal/adapters/driven/storage/fs"
	"github.com/custodia-labs/ragbench-cli/internal/reports"
)

var exportCmd = &cobra.Command{
	Use:   "export [annotations-dir]",
	Short: "Export the flat file inventory",
	Long: `Writes a files.csv inventory of every stored profile (one row per
document with its flags and stressor tags) for spreadsheet triage.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

// exportOut is the inventory output path.
var exportOut string

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", reports.InventoryFile, "Inventory output path")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	annotationsDir := args[0]

	store, err := fsstore.NewProfileStore(annotationsDir)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer store.Close()

	profiles, err := store.List(context.Background())
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles found in %s, run 'ragbench annotate' first", annotationsDir)
	}

	if err := reports.WriteInventory(exportOut, profiles); err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}

	cmd.Printf("Exported %d documents to %s\n", len(profiles), exportOut)
	return nil
}
