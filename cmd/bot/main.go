package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/ots-quiz-bot/internal/config"
	"github.com/aliskhannn/ots-quiz-bot/internal/delivery/telegram"
	"github.com/aliskhannn/ots-quiz-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/ots-quiz-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/ots-quiz-bot/internal/logger"
	"github.com/aliskhannn/ots-quiz-bot/internal/repository"
	"github.com/aliskhannn/ots-quiz-bot/internal/service"
	"github.com/aliskhannn/ots-quiz-bot/internal/storage"
)

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create telegram bot", zap.Error(err))
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	if _, err := bot.Request(telegram.Commands()); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	// Initialize repositories and services.
	questionRepo, err := repository.NewQuestionRepository(cfg.QuestionsPath)
	if err != nil {
		lg.Fatal("failed to load questions", zap.String("path", cfg.QuestionsPath), zap.Error(err))
	}
	lg.Info("questions loaded", zap.Int("count", questionRepo.Count()))

	results, closeResults, err := openResults(ctx, cfg.DB, lg)
	if err != nil {
		lg.Fatal("failed to open result archive", zap.Error(err))
	}
	defer closeResults()

	quizService := service.NewQuizService(questionRepo, storage.NewQuizStorage(), results, lg)
	sweeper := service.NewSessionSweeper(quizService, cfg.Quiz.SweepSchedule, cfg.Quiz.SessionTTL, lg)
	handler := telegram.NewHandler(bot, lg, quizService, cfg.Quiz.LeaderboardSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return handler.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("bot stopped", zap.Error(err))
	}

	lg.Info("shutdown complete")
}

// openResults picks the result archive: postgres when a database is configured,
// memory otherwise. The returned func releases the database pool.
func openResults(ctx context.Context, db config.DB, lg *zap.Logger) (service.ResultRepository, func(), error) {
	if !db.Enabled() {
		lg.Info("DATABASE_URL is not set, quiz results are kept in memory")
		return repository.NewResultRepository(), func() {}, nil
	}

	dsn, err := db.DSN()
	if err != nil {
		return nil, nil, fmt.Errorf("database dsn: %w", err)
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(db.MaxConnections),
		MaxConnLifetime: db.MaxConnLifetime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	resultRepo := pgrepo.NewResultRepository(pool, postgres.NewTransactor(pool))
	if err := resultRepo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("prepare database schema: %w", err)
	}

	lg.Info("quiz results are archived in postgres")
	return resultRepo, pool.Close, nil
}
