package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// isolate runs the test in an empty directory with the relevant environment cleared.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"TELEGRAM_API_TOKEN", "DATABASE_URL", "APP_ENV", "ENV",
		"QUESTIONS_PATH", "QUIZ_SESSION_TTL", "QUIZ_SWEEP_SCHEDULE", "QUIZ_LEADERBOARD_SIZE", "UI_NO_COLOR",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	return dir
}

// TestLoadDefaults verifies defaults apply without files or environment.
func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "local" {
		t.Fatalf("expected env local, got %q", cfg.Env)
	}
	if cfg.QuestionsPath != "assets/data/questions.json" {
		t.Fatalf("unexpected questions path %q", cfg.QuestionsPath)
	}
	if cfg.Quiz.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.Quiz.SessionTTL)
	}
	if cfg.Quiz.LeaderboardSize != 10 {
		t.Fatalf("unexpected leaderboard size %d", cfg.Quiz.LeaderboardSize)
	}
	if cfg.DB.Enabled() {
		t.Fatalf("expected database to be disabled")
	}
	if err := cfg.RequireTelegram(); !errors.Is(err, ErrMissingEnvironmentVariables) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

// TestLoadEnvironmentOverrides verifies environment variables win over defaults.
func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TELEGRAM_API_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/quiz")
	t.Setenv("APP_ENV", "production")
	t.Setenv("QUIZ_SESSION_TTL", "90m")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramAPIToken != "token" || cfg.Env != "production" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if dsn, err := cfg.DB.DSN(); err != nil || dsn != "postgres://localhost/quiz" {
		t.Fatalf("unexpected dsn %q (%v)", dsn, err)
	}
	if cfg.Quiz.SessionTTL != 90*time.Minute {
		t.Fatalf("unexpected session ttl %s", cfg.Quiz.SessionTTL)
	}
}

// TestLoadConfigFile verifies values are read from config/config.yaml.
func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	content := "questions_path: bank.yaml\nquiz:\n  leaderboard_size: 3\n  sweep_schedule: \"@hourly\"\n"
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QuestionsPath != "bank.yaml" || cfg.Quiz.LeaderboardSize != 3 || cfg.Quiz.SweepSchedule != "@hourly" {
		t.Fatalf("config file not applied: %+v", cfg)
	}
}

// TestLoadDotEnv verifies a .env file in the working directory is honoured.
func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TELEGRAM_API_TOKEN=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramAPIToken != "from-dotenv" {
		t.Fatalf("expected token from .env, got %q", cfg.TelegramAPIToken)
	}
}

// TestLoadFlags verifies changed flags override other sources.
func TestLoadFlags(t *testing.T) {
	isolate(t)
	t.Setenv("QUESTIONS_PATH", "env.json")

	flags := pflag.NewFlagSet("quiz-tui", pflag.ContinueOnError)
	flags.String("questions", "", "")
	flags.Bool("no-color", false, "")
	if err := flags.Parse([]string{"--questions", "flag.xlsx", "--no-color"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.QuestionsPath != "flag.xlsx" {
		t.Fatalf("expected flag value, got %q", cfg.QuestionsPath)
	}
	if !cfg.UI.NoColor {
		t.Fatalf("expected no-color flag to apply")
	}
}
