package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/core/services"
)

// CheckInCmd creates the checkIn command
func CheckInCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkIn <volunteer_id> [date]",
		Short: "Record that a volunteer worked a shift (defaults to today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := schedule.FormatDate(app.today())
			if len(args) > 1 {
				date = args[1]
			}
			hours, _ := cmd.Flags().GetFloat64("hours")
			role, _ := cmd.Flags().GetString("role")
			notes, _ := cmd.Flags().GetString("notes")

			shift, err := services.CheckInVolunteer(app.Ctx, app.Database, app.Logger, services.CheckInInput{
				VolunteerID: args[0],
				Date:        date,
				Role:        role,
				HoursWorked: hours,
				Notes:       notes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Checked in for %s (%.1f hours)\n\n", formatDate(shift.Date), shift.HoursWorked)
			return nil
		},
	}
	cmd.Flags().Float64("hours", 0, "Hours worked")
	cmd.Flags().String("role", "", "Role worked")
	cmd.Flags().String("notes", "", "Free-text notes")
	return cmd
}

// RegisterClientCmd creates the registerClient command
func RegisterClientCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registerClient",
		Short: "Register a household with the pantry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			first, _ := cmd.Flags().GetString("first")
			last, _ := cmd.Flags().GetString("last")
			size, _ := cmd.Flags().GetInt("family-size")
			phone, _ := cmd.Flags().GetString("phone")
			email, _ := cmd.Flags().GetString("email")

			client, err := services.RegisterClient(app.Ctx, app.Database, app.Logger, services.ClientInput{
				FirstName:  first,
				LastName:   last,
				FamilySize: size,
				Phone:      phone,
				Email:      email,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Client registered!\n\n")
			fmt.Printf("ID:          %s\n", client.ID)
			fmt.Printf("Name:        %s %s\n", client.FirstName, client.LastName)
			fmt.Printf("Family size: %d\n\n", client.FamilySize)
			return nil
		},
	}
	cmd.Flags().String("first", "", "First name")
	cmd.Flags().String("last", "", "Last name")
	cmd.Flags().Int("family-size", 1, "People in the household")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("email", "", "Email address")
	cmd.MarkFlagRequired("first")
	cmd.MarkFlagRequired("last")
	return cmd
}

// RecordVisitCmd creates the recordVisit command
func RecordVisitCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordVisit <client_id> [date]",
		Short: "Record a client being served (defaults to today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := schedule.FormatDate(app.today())
			if len(args) > 1 {
				date = args[1]
			}
			servedBy, _ := cmd.Flags().GetString("served-by")

			result, err := services.RecordVisit(app.Ctx, app.Database, app.Logger, args[0], date, servedBy)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Visit recorded for %s %s on %s\n",
				result.Client.FirstName, result.Client.LastName, formatDate(result.Visit.Date))
			if result.AlreadyVisitedThisMonth {
				fmt.Printf("%s⚠️  This household has already visited this month%s\n", colorYellow, colorReset)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().String("served-by", "", "Volunteer ID or name of whoever served the client")
	return cmd
}
