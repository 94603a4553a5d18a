// Package cli holds the configuration and wiring of civickeyctl, the
// reference offline client: it keeps a local copy of a municipality's
// content in SQLite, searches it and schedules collection reminders.
package cli

import (
	"strings"
	"time"

	"github.com/civickey/civickey/internal/app/system/idle"
	"github.com/civickey/civickey/internal/client/reminders"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the client configuration.
type Config struct {
	API          APIConfig      `mapstructure:"api"`
	Store        StoreConfig    `mapstructure:"store"`
	Municipality string         `mapstructure:"municipality"`
	Zone         string         `mapstructure:"zone"`
	Locale       string         `mapstructure:"locale"`
	Reminder     ReminderConfig `mapstructure:"reminder"`
	Log          LogConfig      `mapstructure:"log"`
	Admin        AdminConfig    `mapstructure:"admin"`
}

// APIConfig points at the CivicKey server.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// StoreConfig configures the local SQLite store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ReminderConfig is the local time reminders fire at.
type ReminderConfig struct {
	Hour   int `mapstructure:"hour"`
	Minute int `mapstructure:"minute"`
}

// AdminConfig is the back-office account of `civickeyctl admin shell`.
type AdminConfig struct {
	Email       string        `mapstructure:"email"`
	Password    string        `mapstructure:"password"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads civickeyctl.yaml from the working directory (optional), then
// CIVICKEYCTL_* environment variables. bind, when not nil, is called before
// unmarshalling so command-line flags can be bound and take precedence.
func Load(bind func(v *viper.Viper) error) (*Config, error) {
	v := viper.New()

	v.SetConfigName("civickeyctl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CIVICKEYCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", "https://civickey.ca")
	v.SetDefault("store.path", "civickey.db")
	v.SetDefault("municipality", "")
	v.SetDefault("zone", "")
	v.SetDefault("locale", models.DefaultLocale)
	v.SetDefault("reminder.hour", reminders.DefaultHour)
	v.SetDefault("reminder.minute", reminders.DefaultMinute)
	v.SetDefault("log.level", "warn")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.idle_timeout", idle.DefaultThreshold)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}
	if bind != nil {
		if err := bind(v); err != nil {
			return nil, eris.Wrap(err, "config: bind flags")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, cfg.Validate()
}

// Validate checks the values that every command depends on.
func (c *Config) Validate() error {
	if !models.IsSupportedLocale(c.Locale) {
		return eris.Errorf("config: locale %q must be fr or en", c.Locale)
	}
	if c.Reminder.Hour < 0 || c.Reminder.Hour > 23 || c.Reminder.Minute < 0 || c.Reminder.Minute > 59 {
		return eris.Errorf("config: reminder time %02d:%02d is not a valid time", c.Reminder.Hour, c.Reminder.Minute)
	}
	if c.Admin.IdleTimeout < 0 {
		return eris.New("config: admin idle_timeout must not be negative")
	}
	return nil
}

// NewLogger builds the development logger used by the CLI.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}
