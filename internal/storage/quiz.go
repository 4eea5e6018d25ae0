package storage

import (
	"sync"
	"time"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

// QuizStorage provides in-memory storage for live quiz sessions by chat ID.
type QuizStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*entities.QuizSession
}

// NewQuizStorage creates a new QuizStorage.
func NewQuizStorage() *QuizStorage {
	return &QuizStorage{
		sessions: make(map[int64]*entities.QuizSession),
	}
}

// Save stores the session under its player's chat, replacing any previous one.
func (s *QuizStorage) Save(session *entities.QuizSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Player.ChatID] = session
}

// Get retrieves the session for a given chat ID.
func (s *QuizStorage) Get(chatID int64) (*entities.QuizSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[chatID]
	return session, ok
}

// Delete removes the session for a given chat ID.
func (s *QuizStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// IdleSince returns chats whose session was last touched before cutoff.
func (s *QuizStorage) IdleSince(cutoff time.Time) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var idle []int64
	for chatID, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			idle = append(idle, chatID)
		}
	}
	return idle
}

// Len returns the number of stored sessions.
func (s *QuizStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
