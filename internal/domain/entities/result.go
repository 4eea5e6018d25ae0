package entities

import "time"

// QuizResult is the archived outcome of a completed session.
type QuizResult struct {
	ID          string
	SessionID   string
	Player      Player
	Score       int
	Total       int
	Percentage  int
	StartedAt   time.Time
	CompletedAt time.Time
	Answers     []QuizAnswer
}

// NewQuizResult builds the archive record of a completed session.
func NewQuizResult(id string, s *QuizSession) *QuizResult {
	completedAt := s.UpdatedAt
	if s.CompletedAt != nil {
		completedAt = *s.CompletedAt
	}

	return &QuizResult{
		ID:          id,
		SessionID:   s.ID,
		Player:      s.Player,
		Score:       s.Score,
		Total:       s.Total(),
		Percentage:  s.Percentage(),
		StartedAt:   s.StartedAt,
		CompletedAt: completedAt,
		Answers:     s.Answers,
	}
}

// Beats reports whether r ranks above other: higher percentage first, then higher score.
func (r *QuizResult) Beats(other *QuizResult) bool {
	if r.Percentage != other.Percentage {
		return r.Percentage > other.Percentage
	}
	return r.Score > other.Score
}
