package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/pantry-roster/pkg/core/services"
)

// SignUpCmd creates the signUp command
func SignUpCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signUp <volunteer_id> <date>",
		Short: "Sign a volunteer up for a single date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")

			result, err := services.SignUpVolunteer(app.Ctx, app.Database, app.Logger, args[0], args[1], role)
			if err != nil {
				return err
			}
			app.afterWrite()

			verb := "updated"
			if result.Created {
				verb = "created"
			}
			fmt.Printf("\n✓ Signup %s for %s (%s)\n\n", verb, formatDate(result.Signup.Date), result.Signup.ID)
			return nil
		},
	}
	cmd.Flags().String("role", "", "Role for the session, e.g. intake or driver")
	return cmd
}

// ExcuseCmd creates the excuse command
func ExcuseCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "excuse <volunteer_id> <date>",
		Short: "Excuse a volunteer from a single date without changing their pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ExcuseVolunteer(app.Ctx, app.Database, app.Logger, args[0], args[1])
			if err != nil {
				return err
			}
			app.afterWrite()

			fmt.Printf("\n✓ Volunteer excused on %s\n\n", formatDate(result.Signup.Date))
			return nil
		},
	}
}

// RemoveSignupCmd creates the removeSignup command
func RemoveSignupCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "removeSignup <signup_id>",
		Short: "Delete a one-off signup or excusal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.RemoveSignup(app.Ctx, app.Database, app.Logger, args[0]); err != nil {
				return err
			}
			app.afterWrite()

			fmt.Printf("\n✓ Signup %s removed\n\n", args[0])
			return nil
		},
	}
}
