package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	DatabaseURLEnvVar     = "PANTRY_DATABASE_URL"
	DefaultReminderLead   = 3
	DefaultReminderCron   = "0 8 * * *"
	DefaultEmailInterval  = 3 * time.Second
	defaultConfigFileName = "pantry_config.yaml"
	defaultDotEnvFileName = ".env"
)

// Closure is a recurring date on which the pantry does not open
type Closure struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Reason string `yaml:"reason,omitempty"`
}

// RemindersConfig controls the shift reminder job
type RemindersConfig struct {
	Enabled       bool          `yaml:"enabled"`
	LeadDays      int           `yaml:"leadDays" validate:"min=0"`
	Schedule      string        `yaml:"schedule"`
	EmailInterval time.Duration `yaml:"emailInterval"`
}

// SyncConfig controls best-effort replication to the cloud spreadsheet
type SyncConfig struct {
	Enabled       bool   `yaml:"enabled"`
	SpreadsheetID string `yaml:"spreadsheetID" validate:"required_if=Enabled true"`
}

// Config represents the application configuration
type Config struct {
	PantryName  string          `yaml:"pantryName" validate:"required"`
	DatabaseURL string          `yaml:"databaseURL" validate:"required"`
	Timezone    string          `yaml:"timezone,omitempty"`
	Closures    []Closure       `yaml:"closures,omitempty" validate:"dive"`
	Reminders   RemindersConfig `yaml:"reminders"`
	Sync        SyncConfig      `yaml:"sync"`
	GmailSender string          `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// NeedsGoogle reports whether any configured feature talks to Google APIs
func (c *Config) NeedsGoogle() bool {
	return c.Reminders.Enabled || c.Sync.Enabled
}

// Location returns the configured timezone, or the local zone when unset
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		// Validate has already rejected unknown zones
		return time.Local
	}
	return loc
}

// LoadWithEnv loads pantry_config.<env>.yaml and any .env file alongside it.
// An empty env loads pantry_config.yaml.
func LoadWithEnv(env string) (*Config, error) {
	if err := loadDotEnv(defaultDotEnvFileName); err != nil {
		return nil, err
	}

	configPath, err := findConfigFile(FileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule, cron and timezone syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, closure := range cfg.Closures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in closures[%d]: %w", i, err)
		}
	}

	if cfg.Reminders.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Reminders.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule in reminders: %w", err)
		}
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}

	if cfg.Reminders.Enabled && cfg.GmailSender == "" {
		return fmt.Errorf("config validation failed: gmailSender is required when reminders are enabled")
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv(DatabaseURLEnvVar); url != "" {
		cfg.DatabaseURL = url
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Reminders.LeadDays == 0 {
		cfg.Reminders.LeadDays = DefaultReminderLead
	}
	if cfg.Reminders.Schedule == "" {
		cfg.Reminders.Schedule = DefaultReminderCron
	}
	if cfg.Reminders.EmailInterval == 0 {
		cfg.Reminders.EmailInterval = DefaultEmailInterval
	}
}

// loadDotEnv loads secrets from a .env file if one exists. Variables already
// set in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// FileName is the config file LoadWithEnv looks for
func FileName(env string) string {
	if env == "" {
		return defaultConfigFileName
	}
	return "pantry_config." + env + ".yaml"
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
