package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

var (
	ErrSessionNotFound = errors.New("quiz session not found")
	ErrStaleSession    = errors.New("quiz session was replaced")
	ErrStaleQuestion   = errors.New("question is no longer current")
)

// Option customizes a QuizService.
type Option func(*QuizService)

// WithShuffle replaces the random permutation used for questions and options.
func WithShuffle(shuffle entities.ShuffleFunc) Option {
	return func(s *QuizService) { s.shuffle = shuffle }
}

// WithClock replaces the service time source.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator replaces the session and result id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *QuizService) { s.newID = newID }
}

// QuizService runs quiz sessions per chat and archives finished ones.
// All session mutations happen under mu: the Telegram handler and the
// idle sweeper touch sessions from different goroutines. Callers only
// ever receive snapshots.
type QuizService struct {
	mu        sync.Mutex
	questions QuestionRepository
	sessions  SessionStorage
	results   ResultRepository
	logger    *zap.Logger

	shuffle entities.ShuffleFunc
	now     func() time.Time
	newID   func() string
}

func NewQuizService(
	questions QuestionRepository,
	sessions SessionStorage,
	results ResultRepository,
	logger *zap.Logger,
	opts ...Option,
) *QuizService {
	s := &QuizService{
		questions: questions,
		sessions:  sessions,
		results:   results,
		logger:    logger,
		shuffle:   rand.Shuffle,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a new session for the player's chat, abandoning any session still in progress.
func (s *QuizService) Start(ctx context.Context, player entities.Player) (*entities.QuizSession, error) {
	questions, err := s.questions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}

	session, err := entities.NewQuizSession(s.newID(), player, questions, s.shuffle)
	if err != nil {
		return nil, err
	}
	session.SetClock(s.now)
	session.StartedAt = s.now()
	session.UpdatedAt = session.StartedAt

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.sessions.Get(player.ChatID); ok && prev.IsActive() {
		prev.Abandon()
		s.logger.Info("quiz session abandoned",
			zap.Int64("chat_id", player.ChatID),
			zap.String("session_id", prev.ID),
		)
	}
	s.sessions.Save(session)

	s.logger.Info("quiz session started",
		zap.Int64("chat_id", player.ChatID),
		zap.String("session_id", session.ID),
		zap.Int("questions", session.Total()),
	)

	return session.Snapshot(), nil
}

// Current returns a snapshot of the chat's session, completed sessions included.
func (s *QuizService) Current(chatID int64) (*entities.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(chatID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// Toggle flips an option of the given question, which must be the current one.
// The bool reports whether the selection changed.
func (s *QuizService) Toggle(_ context.Context, chatID int64, sessionID string, question, optionIndex int) (*entities.QuizSession, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(chatID, sessionID, question)
	if err != nil {
		return nil, false, err
	}

	changed := session.Toggle(optionIndex)
	return session.Snapshot(), changed, nil
}

// Submit grades the given question, which must be the current one.
func (s *QuizService) Submit(_ context.Context, chatID int64, sessionID string, question int) (*entities.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(chatID, sessionID, question)
	if err != nil {
		return nil, err
	}

	correct, err := session.Submit()
	if err != nil {
		return session.Snapshot(), err
	}

	s.logger.Debug("answer graded",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", sessionID),
		zap.Int("question", session.CurrentIndex+1),
		zap.Bool("correct", correct),
		zap.Int("score", session.Score),
	)

	return session.Snapshot(), nil
}

// Next advances past the given question, which must be the current one. When the
// session completes, the returned Completion is non-nil and the result is archived.
func (s *QuizService) Next(ctx context.Context, chatID int64, sessionID string, question int) (*entities.QuizSession, *entities.Completion, error) {
	session, done, res, err := s.advance(chatID, sessionID, question)
	if err != nil || done == nil {
		return session, nil, err
	}

	s.logger.Info("quiz session completed",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", sessionID),
		zap.Int("score", done.Score),
		zap.Int("total", done.Total),
	)

	// Archived outside mu so a slow database never blocks other chats.
	if err := s.results.Save(ctx, res); err != nil {
		s.logger.Error("failed to archive quiz result",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	return session, done, nil
}

// advance moves the session on under mu and builds the result once it completes.
func (s *QuizService) advance(chatID int64, sessionID string, question int) (*entities.QuizSession, *entities.Completion, *entities.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(chatID, sessionID, question)
	if err != nil {
		return nil, nil, nil, err
	}

	done, err := session.Advance()
	snap := session.Snapshot()
	if err != nil || done == nil {
		return snap, nil, nil, err
	}

	return snap, done, entities.NewQuizResult(s.newID(), snap), nil
}

// Abandon stops and drops the chat's session. It reports whether a session existed.
func (s *QuizService) Abandon(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(chatID)
	if !ok {
		return false
	}
	session.Abandon()
	s.sessions.Delete(chatID)

	return true
}

// Leaderboard returns the best results, one per player.
func (s *QuizService) Leaderboard(ctx context.Context, limit int) ([]*entities.QuizResult, error) {
	top, err := s.results.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	return top, nil
}

// EvictIdle drops sessions untouched for longer than ttl and returns how many were dropped.
func (s *QuizService) EvictIdle(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	idle := s.sessions.IdleSince(s.now().Add(-ttl))
	for _, chatID := range idle {
		if session, ok := s.sessions.Get(chatID); ok {
			session.Abandon()
		}
		s.sessions.Delete(chatID)
	}

	return len(idle)
}

// lookup returns the chat's session if it is the one the caller refers to and is
// still showing the given question. Callers hold mu.
func (s *QuizService) lookup(chatID int64, sessionID string, question int) (*entities.QuizSession, error) {
	session, ok := s.sessions.Get(chatID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.ID != sessionID {
		return nil, ErrStaleSession
	}
	if session.CurrentIndex != question {
		return nil, ErrStaleQuestion
	}
	return session, nil
}
