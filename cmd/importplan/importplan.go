package importplan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/importer"
)

// Command creates the import command: a one-shot import of a spreadsheet,
// by default the one at import.path.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file.xlsx]",
		Short: "Import a meal plan spreadsheet into the database",
		Long:  "Parse the spreadsheet and replace the stored meal plan. Without an argument the file at import.path is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			store := datastore.New(settings)
			if err := store.Open(); err != nil {
				return fmt.Errorf("failed to open datastore: %w", err)
			}
			defer store.Close()

			result, err := importer.New(store, settings).ImportFile(cmd.Context(), path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d meal rows from %s (import %s)\n", result.Rows, result.Source, result.ImportID)
			return nil
		},
	}

	return cmd
}
