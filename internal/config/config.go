package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	drivers     = []string{DriverFile, DriverSQLite, DriverPostgres, DriverMemory}
	reportModes = []string{"concise", "detailed"}
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env            string   `mapstructure:"env"`              // current application environment (local, dev, production etc)
	LogLevel       string   `mapstructure:"log_level"`        // overrides the environment's default log level when set
	SurahsJSONPath string   `mapstructure:"surahs_json_path"` // optional replacement for the embedded surah table
	Storage        Storage  `mapstructure:"storage"`          // persistence backend section
	DB             DB       `mapstructure:"database"`         // database configuration section
	Telegram       Telegram `mapstructure:"telegram"`         // bot configuration section
	Report         Report   `mapstructure:"report"`           // scheduled report section
}

// Storage selects where the student collection is kept.
type Storage struct {
	Driver string `mapstructure:"driver"` // file, sqlite, postgres or memory
	Path   string `mapstructure:"path"`   // directory for file storage, database file for sqlite
	Key    string `mapstructure:"key"`    // key holding the collection
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Telegram contains bot settings.
type Telegram struct {
	Token          string  `mapstructure:"-"`                // bot API token loaded from environment
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids"` // empty allows everyone
	Debug          bool    `mapstructure:"debug"`
}

// Report configures the periodic report.
type Report struct {
	Schedule string  `mapstructure:"schedule"` // cron expression, empty disables the scheduler
	Mode     string  `mapstructure:"mode"`
	ChatIDs  []int64 `mapstructure:"chat_ids"`
	Timezone string  `mapstructure:"timezone"` // IANA name used for cron and report timestamps
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom reads configuration into v, which may already have flags bound to its keys.
// A non-empty configFile replaces the ./config/config.yaml lookup.
func LoadFrom(v *viper.Viper, configFile string) (*Config, error) {
	// A missing .env file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "")
	v.SetDefault("surahs_json_path", "")
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.key", "students_data")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30m")
	v.SetDefault("telegram.allowed_user_ids", []int64{})
	v.SetDefault("telegram.debug", false)
	v.SetDefault("report.schedule", "")
	v.SetDefault("report.mode", "concise")
	v.SetDefault("report.chat_ids", []int64{})
	v.SetDefault("report.timezone", "UTC")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.Telegram.Token = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated values and the timezone.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if !slices.Contains(drivers, c.Storage.Driver) {
		return fmt.Errorf("%w: storage.driver must be one of %s, got %q",
			ErrInvalidConfig, strings.Join(drivers, ", "), c.Storage.Driver)
	}

	c.Report.Mode = strings.ToLower(strings.TrimSpace(c.Report.Mode))
	if c.Report.Mode != "" && !slices.Contains(reportModes, c.Report.Mode) {
		return fmt.Errorf("%w: report.mode must be one of %s, got %q",
			ErrInvalidConfig, strings.Join(reportModes, ", "), c.Report.Mode)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.Storage.Driver == DriverPostgres {
		if _, err := c.DB.DSN(); err != nil {
			return fmt.Errorf("storage driver %q needs DATABASE_URL: %w", DriverPostgres, err)
		}
	}

	return nil
}

// RequireTelegram returns an error when the bot token is not configured.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_API_TOKEN: %w", ErrMissingEnvironmentVariables)
	}
	return nil
}

// Location resolves report.timezone. Empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Report.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report.timezone %q: %w", c.Report.Timezone, err)
	}
	return loc, nil
}

// IsUserAllowed reports whether the Telegram user may use the bot.
func (t Telegram) IsUserAllowed(userID int64) bool {
	return len(t.AllowedUserIDs) == 0 || slices.Contains(t.AllowedUserIDs, userID)
}
