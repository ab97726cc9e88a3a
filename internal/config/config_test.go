package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		PantryName:  "Ilford Community Pantry",
		DatabaseURL: "postgres://localhost/pantry",
		Timezone:    "Europe/London",
		Closures: []Closure{
			{RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", Reason: "Christmas Day"},
		},
		Reminders: RemindersConfig{
			Enabled:  true,
			LeadDays: 3,
			Schedule: "0 8 * * *",
		},
		Sync: SyncConfig{
			Enabled:       true,
			SpreadsheetID: "sheet123",
		},
		GmailSender: "pantry@example.com",
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{
		PantryName:  "Pantry",
		DatabaseURL: "postgres://localhost/pantry",
	}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidRRule(t *testing.T) {
	cfg := validConfig()
	cfg.Closures = append(cfg.Closures, Closure{RRule: "INVALID_RRULE"})

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule in closures[1]")
}

func TestValidate_EmptyRRule(t *testing.T) {
	cfg := validConfig()
	cfg.Closures = []Closure{{Reason: "No rule"}}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidCronSchedule(t *testing.T) {
	cfg := validConfig()
	cfg.Reminders.Schedule = "every morning"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Mars/Olympus_Mons"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestValidate_SyncEnabledWithoutSpreadsheet(t *testing.T) {
	cfg := validConfig()
	cfg.Sync.SpreadsheetID = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SpreadsheetID")
}

func TestValidate_SyncDisabledWithoutSpreadsheet(t *testing.T) {
	cfg := validConfig()
	cfg.Sync = SyncConfig{}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_RemindersRequireSender(t *testing.T) {
	cfg := validConfig()
	cfg.GmailSender = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gmailSender")
}

func TestValidate_InvalidSenderEmail(t *testing.T) {
	cfg := validConfig()
	cfg.GmailSender = "not-an-email"

	err := Validate(cfg)
	assert.Error(t, err)
}

func TestLoadFromPath_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pantry_config.yaml")

	yamlContent := `pantryName: Ilford Community Pantry
databaseURL: postgres://localhost/pantry
timezone: Europe/London
closures:
  - rrule: FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25
    reason: Christmas Day
  - rrule: FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1
reminders:
  enabled: true
  leadDays: 2
  emailInterval: 5s
sync:
  enabled: true
  spreadsheetID: sheet123
gmailSender: pantry@example.com
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "Ilford Community Pantry", cfg.PantryName)
	assert.Equal(t, "postgres://localhost/pantry", cfg.DatabaseURL)
	require.Len(t, cfg.Closures, 2)
	assert.Equal(t, "Christmas Day", cfg.Closures[0].Reason)
	assert.Equal(t, "", cfg.Closures[1].Reason)
	assert.True(t, cfg.Reminders.Enabled)
	assert.Equal(t, 2, cfg.Reminders.LeadDays)
	assert.Equal(t, 5*time.Second, cfg.Reminders.EmailInterval)
	assert.Equal(t, DefaultReminderCron, cfg.Reminders.Schedule)
	assert.True(t, cfg.Sync.Enabled)
	assert.True(t, cfg.NeedsGoogle())
	assert.Equal(t, "Europe/London", cfg.Location().String())
}

func TestLoadFromPath_AppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pantry_config.yaml")

	yamlContent := `pantryName: Pantry
databaseURL: postgres://localhost/pantry
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, DefaultReminderLead, cfg.Reminders.LeadDays)
	assert.Equal(t, DefaultReminderCron, cfg.Reminders.Schedule)
	assert.Equal(t, DefaultEmailInterval, cfg.Reminders.EmailInterval)
	assert.False(t, cfg.NeedsGoogle())
	assert.Equal(t, time.Local, cfg.Location())
}

func TestLoadFromPath_DatabaseURLFromEnvironment(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pantry_config.yaml")

	yamlContent := `pantryName: Pantry
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))
	t.Setenv(DatabaseURLEnvVar, "postgres://env/pantry")

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/pantry", cfg.DatabaseURL)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pantry_config.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte("pantryName: [unclosed"), 0644))

	_, err := LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/pantry_config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnv_SetsVariables(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("PANTRY_TEST_DOTENV=loaded\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PANTRY_TEST_DOTENV") })

	require.NoError(t, loadDotEnv(envPath))

	assert.Equal(t, "loaded", os.Getenv("PANTRY_TEST_DOTENV"))
}

func TestConfigFileName(t *testing.T) {
	assert.Equal(t, "pantry_config.yaml", FileName(""))
	assert.Equal(t, "pantry_config.prod.yaml", FileName("prod"))
}
