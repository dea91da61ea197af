package commands

import (
	"github.com/spf13/cobra"

	"github.com/jakechorley/volunteer-admin/pkg/core/services"
)

// JournalCmd creates the journal command
func JournalCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the most recent mutations issued from this console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			records, err := services.Journal(app.Ctx, app.Journal, app.Logger, limit)
			if err != nil {
				return err
			}
			renderJournal(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().Int("limit", services.DefaultJournalLimit, "Number of records to show")

	return cmd
}
