package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/aliskhannn/ots-quiz-bot/internal/config"
	"github.com/aliskhannn/ots-quiz-bot/internal/delivery/tui"
	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ots-quiz-bot/internal/logger"
	"github.com/aliskhannn/ots-quiz-bot/internal/repository"
)

func main() {
	flags := pflag.NewFlagSet("quiz-tui", pflag.ExitOnError)
	flags.String("questions", "", "path to the question bank (json, yaml or xlsx)")
	flags.Bool("no-color", false, "disable colors")
	flags.String("env", "", "application environment")
	logPath := flags.String("log-file", "quiz-tui.log", "file that receives log output")
	_ = flags.Parse(os.Args[1:])

	if err := run(flags, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flags *pflag.FlagSet, logPath string) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	lg, err := logger.NewFile(cfg, logPath)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	path := cfg.QuestionsPath
	load := func(ctx context.Context) ([]entities.Question, error) {
		repo, err := repository.NewQuestionRepository(path)
		if err != nil {
			return nil, err
		}
		return repo.GetAll(ctx)
	}

	lg.Info("starting terminal quiz", zap.String("questions", path))

	model := tui.NewModel(load, tui.Options{NoColor: cfg.UI.NoColor, Logger: lg})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}

	return nil
}
