package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/core/services"
)

// reminderRunTimeout bounds one scheduled reminder run
const reminderRunTimeout = 10 * time.Minute

func (app *AppContext) sendReminders(ctx context.Context, today time.Time) (*services.ReminderResult, error) {
	if app.GmailClient == nil {
		return nil, fmt.Errorf("reminders are disabled: set reminders.enabled and gmailSender in config")
	}
	return services.SendShiftReminders(ctx, app.Database, app.Calendar, app.GmailClient, app.Cfg, app.Logger, today)
}

// SendRemindersCmd creates the sendReminders command
func SendRemindersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sendReminders",
		Short: "Email volunteers expected at the session reminders.leadDays from today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := app.today()
			if asOf, _ := cmd.Flags().GetString("as-of"); asOf != "" {
				parsed, err := schedule.ParseDate(asOf)
				if err != nil {
					return fmt.Errorf("%w: %v", services.ErrInvalidDate, err)
				}
				today = parsed
			}

			result, err := app.sendReminders(app.Ctx, today)
			if err != nil {
				return err
			}

			renderReminderResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().String("as-of", "", "Run as if today were this date (YYYY-MM-DD)")
	return cmd
}

// RunRemindersCmd creates the runReminders command, which stays in the
// foreground and sends reminders on the configured cron schedule
func RunRemindersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "runReminders",
		Short: "Send reminders on the reminders.schedule cron spec until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.GmailClient == nil {
				return fmt.Errorf("reminders are disabled: set reminders.enabled and gmailSender in config")
			}

			logger := cronLogger{app.Logger.Sugar()}
			c := cron.New(
				cron.WithLocation(app.Cfg.Location()),
				cron.WithLogger(logger),
				cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
			)

			_, err := c.AddFunc(app.Cfg.Reminders.Schedule, func() {
				ctx, cancel := context.WithTimeout(app.Ctx, reminderRunTimeout)
				defer cancel()

				result, err := app.sendReminders(ctx, app.today())
				if err != nil {
					app.Logger.Warn("Scheduled reminder run failed", zap.Error(err))
					return
				}
				app.Logger.Info("Scheduled reminder run finished",
					zap.String("session_date", result.SessionDate),
					zap.Int("sent", len(result.Sent)),
					zap.Int("failed", len(result.Failed)))
			})
			if err != nil {
				return fmt.Errorf("failed to schedule reminders: %w", err)
			}

			c.Start()
			app.Logger.Info("Reminder scheduler started",
				zap.String("schedule", app.Cfg.Reminders.Schedule),
				zap.String("timezone", app.Cfg.Location().String()))
			fmt.Printf("\nSending reminders on %q. Press Ctrl+C to stop.\n\n", app.Cfg.Reminders.Schedule)

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signals)

			select {
			case <-signals:
			case <-app.Ctx.Done():
			}

			app.Logger.Info("Stopping reminder scheduler")
			<-c.Stop().Done()
			return nil
		},
	}
}

// cronLogger routes cron's own logging through zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, append(keysAndValues, "error", err)...)
}
