package telegram

import (
	"context"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

type QuizService interface {
	Start(ctx context.Context, player entities.Player) (*entities.QuizSession, error)
	Current(chatID int64) (*entities.QuizSession, error)
	Toggle(ctx context.Context, chatID int64, sessionID string, question, optionIndex int) (*entities.QuizSession, bool, error)
	Submit(ctx context.Context, chatID int64, sessionID string, question int) (*entities.QuizSession, error)
	Next(ctx context.Context, chatID int64, sessionID string, question int) (*entities.QuizSession, *entities.Completion, error)
	Abandon(chatID int64) bool
	Leaderboard(ctx context.Context, limit int) ([]*entities.QuizResult, error)
}
