package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/internal/config"
	"github.com/jakechorley/pantry-roster/pkg/clients/gmailclient"
	"github.com/jakechorley/pantry-roster/pkg/clients/sheetsclient"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/core/services"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

// AppContext holds the application dependencies shared across all commands.
// The Google clients, Replica and Syncer are nil when the features that need
// them are disabled in config.
type AppContext struct {
	Cfg          *config.Config
	Calendar     *schedule.Calendar
	Database     db.Database
	Replica      db.Replica
	SheetsClient *sheetsclient.Client
	GmailClient  *gmailclient.Client
	Syncer       *services.BackgroundSyncer
	Logger       *zap.Logger
	Ctx          context.Context
}

// afterWrite kicks off a background sync once a local change has committed
func (app *AppContext) afterWrite() {
	app.Syncer.Trigger(app.Ctx)
}

// today is the current calendar date in the pantry's timezone
func (app *AppContext) today() time.Time {
	return schedule.DateOf(time.Now().In(app.Cfg.Location()))
}

func (app *AppContext) requireReplica() error {
	if app.Replica == nil {
		return fmt.Errorf("cloud sync is disabled: set sync.enabled and sync.spreadsheetID in config")
	}
	return nil
}
