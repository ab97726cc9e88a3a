package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/cmd/cli/commands"
	"github.com/jakechorley/pantry-roster/internal/config"
	"github.com/jakechorley/pantry-roster/pkg/clients/gmailclient"
	"github.com/jakechorley/pantry-roster/pkg/clients/sheetsclient"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/core/services"
	"github.com/jakechorley/pantry-roster/pkg/db"
	"github.com/jakechorley/pantry-roster/pkg/postgres"
	"github.com/jakechorley/pantry-roster/pkg/utils"
	"github.com/jakechorley/pantry-roster/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
	store   *postgres.DB
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Dependencies are filled in by initApp
// before any command runs.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pantry-roster",
		Short: "Pantry Roster CLI - Manage food pantry volunteers",
		Long:  `A CLI tool for managing food pantry volunteers, shift signups, attendance and reminders.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Syncer.Wait()
			if store != nil {
				store.Close()
			}
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", fmt.Sprintf("Environment (loads %s and oauthClient.<env>.json)", config.FileName("<env>")))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")

	rootCmd.AddCommand(commands.RegisterVolunteerCmd(app))
	rootCmd.AddCommand(commands.UpdateVolunteerCmd(app))
	rootCmd.AddCommand(commands.DeleteVolunteerCmd(app))
	rootCmd.AddCommand(commands.ListVolunteersCmd(app))
	rootCmd.AddCommand(commands.MigrateVolunteersCmd(app))
	rootCmd.AddCommand(commands.ImportVolunteersCmd(app))
	rootCmd.AddCommand(commands.SignUpCmd(app))
	rootCmd.AddCommand(commands.ExcuseCmd(app))
	rootCmd.AddCommand(commands.RemoveSignupCmd(app))
	rootCmd.AddCommand(commands.ViewScheduleCmd(app))
	rootCmd.AddCommand(commands.AttendeesCmd(app))
	rootCmd.AddCommand(commands.PublishScheduleCmd(app))
	rootCmd.AddCommand(commands.CheckInCmd(app))
	rootCmd.AddCommand(commands.RegisterClientCmd(app))
	rootCmd.AddCommand(commands.RecordVisitCmd(app))
	rootCmd.AddCommand(commands.ReportCmd(app))
	rootCmd.AddCommand(commands.SendRemindersCmd(app))
	rootCmd.AddCommand(commands.RunRemindersCmd(app))
	rootCmd.AddCommand(commands.SyncCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	return rootCmd
}

// initApp sets up logger, config, database and the optional Google clients
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(logging.Options{Env: env, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := app.Logger

	logger.Debug("Starting application", zap.String("environment", env))

	// Load configuration
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debug("Configuration loaded successfully", zap.String("pantry", app.Cfg.PantryName))

	// Connect to the local store
	store, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Database = store
	logger.Debug("Database ready")

	// Build the session calendar
	closures := make([]schedule.Closure, 0, len(app.Cfg.Closures))
	for _, c := range app.Cfg.Closures {
		closures = append(closures, schedule.Closure{RRule: c.RRule, Reason: c.Reason})
	}
	app.Calendar, err = schedule.NewCalendar(closures)
	if err != nil {
		return fmt.Errorf("failed to build calendar: %w", err)
	}

	if !app.Cfg.NeedsGoogle() {
		logger.Debug("Google integrations disabled")
		return nil
	}

	// Authenticate with Google once for every client
	oauthClientCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	oauthConfig, err := utils.GetOAuthConfig(oauthClientCfg)
	if err != nil {
		return fmt.Errorf("failed to build OAuth config: %w", err)
	}
	token, err := utils.GetTokenWithFlow(app.Ctx, oauthConfig, env, logger)
	if err != nil {
		return fmt.Errorf("failed to get OAuth token: %w", err)
	}

	app.SheetsClient, err = sheetsclient.NewClient(app.Ctx, oauthConfig, token)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}
	logger.Debug("Sheets client initialized successfully")

	if app.Cfg.Sync.Enabled {
		replica, err := db.NewCloudDB(app.SheetsClient, app.Cfg.Sync.SpreadsheetID)
		if err != nil {
			return fmt.Errorf("failed to open cloud replica: %w", err)
		}
		app.Replica = replica
		app.Syncer = services.NewBackgroundSyncer(logger, func(ctx context.Context) error {
			_, err := services.RunSync(ctx, store, replica, logger)
			return err
		})
		logger.Debug("Cloud sync enabled", zap.String("spreadsheet_id", app.Cfg.Sync.SpreadsheetID))
	}

	if app.Cfg.Reminders.Enabled {
		app.GmailClient, err = gmailclient.NewClient(app.Ctx, oauthConfig, token, app.Cfg.GmailSender, app.Cfg.Reminders.EmailInterval)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		logger.Debug("Gmail client initialized successfully")
	}

	return nil
}
