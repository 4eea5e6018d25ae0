package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files, environment variables and flags.
type Config struct {
	Env              string `mapstructure:"env"`            // current application environment (local, dev, production etc)
	TelegramAPIToken string `mapstructure:"-"`              // Telegram API token loaded from environment
	QuestionsPath    string `mapstructure:"questions_path"` // path to the question bank (json, yaml or xlsx)
	Quiz             Quiz   `mapstructure:"quiz"`           // quiz session configuration section
	UI               UI     `mapstructure:"ui"`             // terminal front-end section
	DB               DB     `mapstructure:"database"`       // database configuration section
}

// Quiz contains session lifecycle parameters.
type Quiz struct {
	SessionTTL      time.Duration `mapstructure:"session_ttl"`      // idle time after which a session is evicted
	SweepSchedule   string        `mapstructure:"sweep_schedule"`   // cron spec for the idle session sweeper
	LeaderboardSize int           `mapstructure:"leaderboard_size"` // number of entries shown by /top
}

// UI contains terminal rendering options.
type UI struct {
	NoColor bool `mapstructure:"no_color"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Enabled reports whether a database is configured.
func (db DB) Enabled() bool {
	return db.URL != ""
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from .env, config files, environment variables and,
// when flags is not nil, command-line flags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("questions_path", "assets/data/questions.json")
	v.SetDefault("quiz.session_ttl", "24h")
	v.SetDefault("quiz.sweep_schedule", "@every 10m")
	v.SetDefault("quiz.leaderboard_size", 10)
	v.SetDefault("ui.no_color", false)
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

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
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")

	return &cfg, nil
}

// bindFlags maps command-line flag names to configuration keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	keys := map[string]string{
		"questions": "questions_path",
		"no-color":  "ui.no_color",
		"env":       "env",
	}

	for name, key := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	return nil
}

// RequireTelegram checks that the bot can authorize against Telegram.
func (c *Config) RequireTelegram() error {
	if c.TelegramAPIToken == "" {
		return fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}
	return nil
}
