package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/services"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

// addVolunteerFlags registers the editable volunteer fields on cmd
func addVolunteerFlags(cmd *cobra.Command) {
	cmd.Flags().String("first", "", "First name")
	cmd.Flags().String("last", "", "Last name")
	cmd.Flags().String("email", "", "Email address (used for shift reminders)")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().StringSlice("slots", nil, "Recurring slots, e.g. every-Monday,2nd-Friday")
	cmd.Flags().StringSlice("days", nil, "Legacy recurring weekdays, migrated to every-<Weekday> slots")
}

// volunteerInputFromFlags overlays any flags the user set onto base
func volunteerInputFromFlags(cmd *cobra.Command, base services.VolunteerInput) services.VolunteerInput {
	flags := cmd.Flags()
	if flags.Changed("first") {
		base.FirstName, _ = flags.GetString("first")
	}
	if flags.Changed("last") {
		base.LastName, _ = flags.GetString("last")
	}
	if flags.Changed("email") {
		base.Email, _ = flags.GetString("email")
	}
	if flags.Changed("phone") {
		base.Phone, _ = flags.GetString("phone")
	}
	if flags.Changed("slots") {
		base.RecurringSlots, _ = flags.GetStringSlice("slots")
	}
	if flags.Changed("days") {
		days, _ := flags.GetStringSlice("days")
		base.RecurringDays = make([]model.Weekday, 0, len(days))
		for _, d := range days {
			base.RecurringDays = append(base.RecurringDays, model.Weekday(d))
		}
	}
	return base
}

// RegisterVolunteerCmd creates the registerVolunteer command
func RegisterVolunteerCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registerVolunteer",
		Short: "Register a new volunteer with an optional recurring pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := volunteerInputFromFlags(cmd, services.VolunteerInput{})

			volunteer, err := services.RegisterVolunteer(app.Ctx, app.Database, app.Logger, input)
			if err != nil {
				return err
			}
			app.afterWrite()

			fmt.Printf("\n✓ Volunteer registered!\n\n")
			fmt.Printf("ID:    %s\n", volunteer.ID)
			fmt.Printf("Name:  %s %s\n", volunteer.FirstName, volunteer.LastName)
			fmt.Printf("Slots: %v\n\n", volunteer.RecurringSlots)
			return nil
		},
	}
	addVolunteerFlags(cmd)
	cmd.MarkFlagRequired("first")
	cmd.MarkFlagRequired("last")
	return cmd
}

// UpdateVolunteerCmd creates the updateVolunteer command. Only flags that are
// passed change; everything else keeps its stored value.
func UpdateVolunteerCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updateVolunteer <volunteer_id>",
		Short: "Edit a volunteer's details or recurring pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			existing, err := app.Database.GetVolunteer(app.Ctx, id)
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: %s", services.ErrVolunteerNotFound, id)
			}
			if err != nil {
				return fmt.Errorf("failed to fetch volunteer: %w", err)
			}

			input := volunteerInputFromFlags(cmd, services.VolunteerInput{
				FirstName:      existing.FirstName,
				LastName:       existing.LastName,
				Email:          existing.Email,
				Phone:          existing.Phone,
				RecurringDays:  existing.RecurringDays,
				RecurringSlots: existing.RecurringSlots,
			})
			if cmd.Flags().Changed("slots") && !cmd.Flags().Changed("days") {
				// new slots replace the legacy pattern rather than sitting beside it
				input.RecurringDays = nil
			}

			volunteer, err := services.UpdateVolunteer(app.Ctx, app.Database, app.Logger, id, input)
			if err != nil {
				return err
			}
			app.afterWrite()

			fmt.Printf("\n✓ Volunteer %s updated\n", volunteer.ID)
			fmt.Printf("Slots: %v\n\n", volunteer.RecurringSlots)
			return nil
		},
	}
	addVolunteerFlags(cmd)
	return cmd
}

// DeleteVolunteerCmd creates the deleteVolunteer command
func DeleteVolunteerCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteVolunteer <volunteer_id>",
		Short: "Delete a volunteer along with their signups and shift history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.DeleteVolunteer(app.Ctx, app.Database, app.Logger, args[0]); err != nil {
				return err
			}
			app.afterWrite()

			fmt.Printf("\n✓ Volunteer %s deleted\n\n", args[0])
			return nil
		},
	}
}

// ListVolunteersCmd creates the listVolunteers command
func ListVolunteersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listVolunteers",
		Short: "List all volunteers and their recurring patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			volunteers, err := services.ListVolunteers(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			renderVolunteers(cmd.OutOrStdout(), volunteers)
			return nil
		},
	}
}

// MigrateVolunteersCmd creates the migrateVolunteers command
func MigrateVolunteersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrateVolunteers",
		Short: "Convert legacy recurring weekdays to slots for every volunteer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrated, err := services.MigrateVolunteers(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}
			if migrated > 0 {
				app.afterWrite()
			}

			app.Logger.Debug("migrateVolunteers command", zap.Int("migrated", migrated))
			fmt.Printf("\n✓ Migrated %d volunteers\n\n", migrated)
			return nil
		},
	}
}

// ImportVolunteersCmd creates the importVolunteers command
func ImportVolunteersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importVolunteers <spreadsheetID> <tab>",
		Short: "Register volunteers from a roster tab in a Google Sheet",
		Long: `Reads a roster tab with "First name", "Last name" and optional "Email",
"Phone" and "Recurring slots" columns. Rows matching an existing volunteer by
email (or by name when there is no email) are left alone.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.SheetsClient == nil {
				return fmt.Errorf("importing needs Google access: enable sync or reminders in config")
			}

			result, err := services.ImportVolunteers(app.Ctx, app.Database, app.SheetsClient, app.Logger, args[0], args[1])
			if err != nil {
				return err
			}
			if len(result.Imported) > 0 {
				app.afterWrite()
			}

			fmt.Printf("\n✓ Imported %d volunteers\n", len(result.Imported))
			for _, v := range result.Imported {
				fmt.Printf("  - %s %s (%s)\n", v.FirstName, v.LastName, v.ID)
			}
			if len(result.Existing) > 0 {
				fmt.Printf("%sAlready registered: %d%s\n", colorDim, len(result.Existing), colorReset)
			}
			if len(result.Rejected) > 0 {
				fmt.Printf("⚠️  Rejected %d rows:\n", len(result.Rejected))
				for _, r := range result.Rejected {
					fmt.Printf("  ✗ %s: %s\n", r.Name, r.Reason)
				}
			}
			fmt.Println()
			return nil
		},
	}
}
