package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

// ResultRepository keeps each player's best result in memory.
// It is used when no database is configured; results are lost on restart.
type ResultRepository struct {
	mu   sync.RWMutex
	best map[int64]*entities.QuizResult
}

// NewResultRepository creates an empty ResultRepository.
func NewResultRepository() *ResultRepository {
	return &ResultRepository{
		best: make(map[int64]*entities.QuizResult),
	}
}

// Save stores the result if it beats the player's previous best.
func (r *ResultRepository) Save(_ context.Context, res *entities.QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := playerKey(res.Player)
	if prev, ok := r.best[key]; ok && !res.Beats(prev) {
		return nil
	}
	r.best[key] = res

	return nil
}

// Top returns up to limit best results ordered by percentage, then score.
func (r *ResultRepository) Top(_ context.Context, limit int) ([]*entities.QuizResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := make([]*entities.QuizResult, 0, len(r.best))
	for _, res := range r.best {
		sorted = append(sorted, res)
	}

	slices.SortFunc(sorted, func(a, b *entities.QuizResult) int {
		switch {
		case a.Beats(b):
			return -1
		case b.Beats(a):
			return 1
		default:
			return a.CompletedAt.Compare(b.CompletedAt)
		}
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted, nil
}

// playerKey falls back to the chat when the user is unknown.
func playerKey(p entities.Player) int64 {
	if p.UserID != 0 {
		return p.UserID
	}
	return p.ChatID
}
