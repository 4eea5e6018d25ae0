package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ots-quiz-bot/internal/service"
)

func (h *Handler) startHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		msg := newMessage(chatID, welcomeMessage())
		msg.ReplyMarkup = buildStartKeyboard()
		h.send(msg)
		return nil
	}
}

func (h *Handler) quizHandler(player entities.Player) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.startQuiz(ctx, player)
	}
}

// startQuiz begins a session and sends its first question as a new message.
func (h *Handler) startQuiz(ctx context.Context, player entities.Player) error {
	session, err := h.quizService.Start(ctx, player)
	if errors.Is(err, entities.ErrEmptyDataset) {
		h.send(newPlainMessage(player.ChatID, msgNoQuestions))
		return nil
	}
	if err != nil {
		return err
	}

	msg := newMessage(player.ChatID, formatQuestion(session))
	msg.ReplyMarkup = buildQuestionKeyboard(session)
	h.send(msg)

	return nil
}

func (h *Handler) scoreHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		session, err := h.quizService.Current(chatID)
		if errors.Is(err, service.ErrSessionNotFound) {
			h.send(newPlainMessage(chatID, msgNoActiveQuiz))
			return nil
		}
		if err != nil {
			return err
		}

		h.send(newMessage(chatID, formatScore(session)))
		return nil
	}
}

func (h *Handler) stopHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if !h.quizService.Abandon(chatID) {
			h.send(newPlainMessage(chatID, msgNoActiveQuiz))
			return nil
		}

		h.logger.Info("quiz stopped by player", zap.Int64("chat_id", chatID))
		h.send(newPlainMessage(chatID, msgQuizStopped))
		return nil
	}
}

func (h *Handler) topHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		top, err := h.quizService.Leaderboard(ctx, h.leaderboardSize)
		if err != nil {
			h.logger.Error("failed to load leaderboard", zap.Error(err))
			h.send(newPlainMessage(chatID, msgLeaderboardFailed))
			return nil
		}

		if len(top) == 0 {
			h.send(newPlainMessage(chatID, msgLeaderboardEmpty))
			return nil
		}

		h.send(newMessage(chatID, formatLeaderboard(top)))
		return nil
	}
}
