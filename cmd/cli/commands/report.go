package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/pantry-roster/pkg/core/services"
)

// ReportCmd creates the report command
func ReportCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report [YYYY-MM]",
		Short: "Summarise visits and volunteering for a month (defaults to the current month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := app.today()
			if len(args) > 0 {
				parsed, err := time.Parse("2006-01", args[0])
				if err != nil {
					return fmt.Errorf("%w: month must be YYYY-MM, got %s", services.ErrInvalidDate, args[0])
				}
				month = parsed
			}

			report, err := services.MonthlyReport(app.Ctx, app.Database, app.Calendar, app.Logger, month.Year(), month.Month())
			if err != nil {
				return err
			}

			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}
