package commands

import (
	"github.com/spf13/cobra"

	"github.com/jakechorley/pantry-roster/pkg/core/services"
)

// SyncCmd creates the sync command
func SyncCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Exchange volunteer and signup changes with the cloud spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireReplica(); err != nil {
				return err
			}

			// a foreground sync supersedes any background one still running
			app.Syncer.Wait()

			result, err := services.RunSync(app.Ctx, app.Database, app.Replica, app.Logger)
			if err != nil {
				return err
			}

			renderSyncResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}
