package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

type Handler struct {
	bot             *tgbotapi.BotAPI
	logger          *zap.Logger
	quizService     QuizService
	leaderboardSize int
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	quizService QuizService,
	leaderboardSize int,
) *Handler {
	return &Handler{
		bot:             bot,
		logger:          logger,
		quizService:     quizService,
		leaderboardSize: leaderboardSize,
	}
}

// Commands lists the bot commands shown in the Telegram menu.
func Commands() tgbotapi.SetMyCommandsConfig {
	return tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "quiz", Description: "Начать квиз"},
		tgbotapi.BotCommand{Command: "score", Description: "Текущий счёт"},
		tgbotapi.BotCommand{Command: "stop", Description: "Остановить квиз"},
		tgbotapi.BotCommand{Command: "top", Description: "Лидерборд"},
		tgbotapi.BotCommand{Command: "help", Description: "Помощь"},
	)
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID
	player := newPlayer(chatID, update.Message.From)

	if !update.Message.IsCommand() {
		h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	switch update.Message.Command() {
	case "start":
		_ = h.withErrorHandling(h.startHandler())(ctx, chatID)

	case "quiz":
		_ = h.withErrorHandling(h.quizHandler(player))(ctx, chatID)

	case "score":
		_ = h.withErrorHandling(h.scoreHandler())(ctx, chatID)

	case "stop":
		_ = h.withErrorHandling(h.stopHandler())(ctx, chatID)

	case "top":
		_ = h.withErrorHandling(h.topHandler())(ctx, chatID)

	case "help":
		h.send(newPlainMessage(chatID, msgHelp))

	default:
		h.send(newPlainMessage(chatID, msgUnknownCommand))
	}
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newPlainMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}

// newPlayer identifies the player behind an update. From is nil in channels.
func newPlayer(chatID int64, from *tgbotapi.User) entities.Player {
	p := entities.Player{ChatID: chatID}
	if from != nil {
		p.UserID = from.ID
		p.Username = from.UserName
		p.FirstName = from.FirstName
	}
	return p
}
