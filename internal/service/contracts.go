package service

import (
	"context"
	"time"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

type QuestionRepository interface {
	GetAll(ctx context.Context) ([]entities.Question, error)
}

// SessionStorage keeps live sessions by chat.
type SessionStorage interface {
	Save(session *entities.QuizSession)
	Get(chatID int64) (*entities.QuizSession, bool)
	Delete(chatID int64)
	IdleSince(cutoff time.Time) []int64
}

// ResultRepository archives completed sessions and ranks them.
type ResultRepository interface {
	Save(ctx context.Context, res *entities.QuizResult) error
	Top(ctx context.Context, limit int) ([]*entities.QuizResult, error)
}
