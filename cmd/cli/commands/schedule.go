package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/core/services"
)

// defaultScheduleDays is how far ahead viewSchedule looks without an end date
const defaultScheduleDays = 14

// ViewScheduleCmd creates the viewSchedule command
func ViewScheduleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewSchedule [from] [to]",
		Short: "Show who is expected at each pantry session (defaults to the next two weeks)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from := schedule.FormatDate(app.today())
			if len(args) > 0 {
				from = args[0]
			}

			to := ""
			if len(args) > 1 {
				to = args[1]
			} else {
				start, err := schedule.ParseDate(from)
				if err != nil {
					return fmt.Errorf("%w: %v", services.ErrInvalidDate, err)
				}
				to = schedule.FormatDate(start.AddDate(0, 0, defaultScheduleDays-1))
			}

			app.Logger.Debug("viewSchedule command", zap.String("from", from), zap.String("to", to))

			view, err := services.ViewSchedule(app.Ctx, app.Database, app.Calendar, app.Logger, from, to)
			if err != nil {
				return err
			}

			renderSchedule(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

// AttendeesCmd creates the attendees command
func AttendeesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "attendees [date]",
		Short: "List the volunteers expected on a date (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := schedule.FormatDate(app.today())
			if len(args) > 0 {
				date = args[0]
			}

			attendees, err := services.GetAttendees(app.Ctx, app.Database, app.Logger, date)
			if err != nil {
				return err
			}

			if parsed, err := schedule.ParseDate(date); err == nil {
				if reason, closed := app.Calendar.ClosureReason(parsed); closed {
					fmt.Printf("%sNote: the pantry is closed on this date (%s)%s\n", colorYellow, reason, colorReset)
				}
			}
			renderAttendees(cmd.OutOrStdout(), date, attendees)
			return nil
		},
	}
}

// PublishScheduleCmd creates the publishSchedule command
func PublishScheduleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishSchedule <from> <to>",
		Short: "Write the schedule for a date range to a tab in the sync spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.SheetsClient == nil {
				return fmt.Errorf("publishing needs the sync spreadsheet: set sync.enabled and sync.spreadsheetID in config")
			}

			result, err := services.PublishSchedule(
				app.Ctx,
				app.Database,
				app.Calendar,
				app.SheetsClient,
				app.Cfg,
				app.Logger,
				args[0],
				args[1],
			)
			if err != nil {
				return err
			}

			verb := "Updated"
			if result.Created {
				verb = "Created"
			}
			fmt.Printf("\n✓ %s tab %q\n", verb, result.TabTitle)
			fmt.Printf("Sessions: %d, closed days: %d\n\n", result.Sessions, result.Closed)
			return nil
		},
	}
}
