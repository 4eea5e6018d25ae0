package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
	"github.com/aliskhannn/ots-quiz-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answerCallback(cb, "")
		return
	}

	cd := decodeCallback(cb.Data)
	switch cd.Action {
	case actionQuiz:
		h.handleQuizCallback(ctx, cb, cd)
	case actionTop:
		h.answerCallback(cb, "")
		_ = h.withErrorHandling(h.topHandler())(ctx, cb.Message.Chat.ID)
	default:
		h.logger.Warn("unknown callback", zap.String("data", cb.Data))
		h.answerCallback(cb, "")
	}
}

func (h *Handler) handleQuizCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, cd callbackData) {
	qc, err := parseQuizCallback(cd)
	if err != nil {
		h.logger.Warn("invalid quiz callback", zap.String("data", cd.Raw), zap.Error(err))
		h.answerCallback(cb, "")
		return
	}

	chatID := cb.Message.Chat.ID

	switch qc.Sub {
	case quizStart:
		h.answerCallback(cb, "")
		_ = h.withErrorHandling(h.quizHandler(newPlayer(chatID, cb.From)))(ctx, chatID)

	case quizToggle:
		session, changed, err := h.quizService.Toggle(ctx, chatID, qc.SessionID, qc.Question, qc.Option)
		if err != nil {
			h.answerQuizError(cb, err)
			return
		}
		if !changed {
			h.answerCallback(cb, toggleRejectedHint(session, qc.Option))
			return
		}
		h.answerCallback(cb, "")
		h.editQuestion(cb, session)

	case quizSubmit:
		session, err := h.quizService.Submit(ctx, chatID, qc.SessionID, qc.Question)
		if errors.Is(err, entities.ErrSubmitNotReady) {
			h.answerCallback(cb, formatSelectionHint(session))
			return
		}
		if err != nil {
			h.answerQuizError(cb, err)
			return
		}
		h.answerCallback(cb, "")
		h.editQuestion(cb, session)

	case quizNext:
		session, done, err := h.quizService.Next(ctx, chatID, qc.SessionID, qc.Question)
		if err != nil {
			h.answerQuizError(cb, err)
			return
		}
		h.answerCallback(cb, "")
		if done != nil {
			edit := newEdit(chatID, cb.Message.MessageID, formatCompletion(done))
			kb := buildQuizResultKeyboard()
			edit.ReplyMarkup = &kb
			h.send(edit)
			return
		}
		h.editQuestion(cb, session)
	}
}

// editQuestion redraws the question message in place.
func (h *Handler) editQuestion(cb *tgbotapi.CallbackQuery, session *entities.QuizSession) {
	edit := newEdit(cb.Message.Chat.ID, cb.Message.MessageID, formatQuestion(session))
	kb := buildQuestionKeyboard(session)
	edit.ReplyMarkup = &kb
	h.send(edit)
}

// answerQuizError maps quiz errors to a short callback answer.
func (h *Handler) answerQuizError(cb *tgbotapi.CallbackQuery, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrStaleSession):
		h.answerCallback(cb, msgStaleQuiz)
	case errors.Is(err, service.ErrStaleQuestion):
		h.answerCallback(cb, hintStaleQuestion)
	case errors.Is(err, entities.ErrAlreadySubmitted):
		h.answerCallback(cb, hintAlreadyAnswered)
	case errors.Is(err, entities.ErrNotSubmitted):
		h.answerCallback(cb, hintAnswerFirst)
	case errors.Is(err, entities.ErrSessionCompleted):
		h.answerCallback(cb, hintQuizFinished)
	default:
		h.logger.Error("quiz callback failed",
			zap.Int64("chat_id", cb.Message.Chat.ID),
			zap.String("data", cb.Data),
			zap.Error(err),
		)
		h.answerCallback(cb, msgInternalError)
	}
}

// answerCallback removes the client's loading indicator, optionally with a toast.
func (h *Handler) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	answer := tgbotapi.NewCallback(cb.ID, text)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}

// toggleRejectedHint explains why a toggle changed nothing. Unknown options stay silent.
func toggleRejectedHint(s *entities.QuizSession, optionIndex int) string {
	switch {
	case !s.IsActive():
		return hintQuizFinished
	case s.View.Submitted:
		return hintAlreadyAnswered
	case !s.Current().HasOption(optionIndex):
		return ""
	default:
		return hintSelectionFull
	}
}
