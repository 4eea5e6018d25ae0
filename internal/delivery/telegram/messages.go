// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

// Plain messages.
const (
	msgNoQuestions       = "⏳ Вопросы ещё загружаются. Попробуйте чуть позже."
	msgNoActiveQuiz      = "Сейчас нет активного квиза. Нажмите /quiz, чтобы начать."
	msgQuizStopped       = "🚪 Квиз остановлен. Результат не сохранён."
	msgStaleQuiz         = "Этот квиз уже неактуален. Нажмите /quiz, чтобы начать новый."
	msgLeaderboardEmpty  = "🏆 Лидерборд пуст. Будьте первым! 🎯"
	msgLeaderboardFailed = "Не удалось загрузить лидерборд. Попробуйте позже."
	msgInternalError     = "Что‑то пошло не так. Попробуйте позже."
	msgUnknownCommand    = "Неизвестная команда. Список доступных команд: /help"
	msgHelp              = "/quiz — начать квиз\n/score — текущий счёт\n/stop — остановить квиз\n/top — лидерборд\n/help — помощь"
)

// Callback answers (short toasts).
const (
	hintAlreadyAnswered = "Ответ уже принят"
	hintQuizFinished    = "Квиз завершён"
	hintSelectionFull   = "Больше вариантов выбрать нельзя"
	hintAnswerFirst     = "Сначала ответьте на вопрос"
	hintStaleQuestion   = "Этот вопрос уже пройден"
)

const (
	markSelected   = "☑️"
	markUnselected = "⬜"
	markCorrect    = "✅"
	markIncorrect  = "❌"
	markNeutral    = "▫️"

	buttonTextLimit = 48
)

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

// welcomeMessage builds welcome message safely for MarkdownV2.
func welcomeMessage() string {
	var sb strings.Builder

	sb.WriteString(bold("OTS Quiz"))
	sb.WriteString(md(" — тренажёр с вопросами, где правильных ответов может быть несколько."))
	sb.WriteString("\n\n")
	sb.WriteString(md("Вопросы и варианты каждый раз перемешиваются. Выберите столько вариантов, сколько правильных ответов, и нажмите «Ответить»."))
	sb.WriteString("\n\n")
	sb.WriteString(md(msgHelp))

	return sb.String()
}

// formatQuestion renders the current question with its options in display order.
func formatQuestion(s *entities.QuizSession) string {
	q := s.Current()
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("Счёт: %d/%d", s.Score, s.Total())))
	sb.WriteString("\n\n")
	sb.WriteString(bold(fmt.Sprintf("Вопрос %d из %d:", s.CurrentIndex+1, s.Total())))
	sb.WriteString(" ")
	sb.WriteString(md(q.Prompt))
	if q.Note != "" {
		sb.WriteString("\n")
		sb.WriteString(italic(q.Note))
	}
	sb.WriteString("\n\n")

	for pos, opt := range s.View.Options {
		sb.WriteString(md(fmt.Sprintf("%s %d. %s", optionMark(s, opt.Index), pos+1, opt.Text)))
		sb.WriteString("\n")
	}

	if !s.View.Submitted {
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("Выберите вариантов: %d", q.RequiredSelections())))
		return sb.String()
	}

	sb.WriteString("\n")
	if s.Answers[len(s.Answers)-1].IsCorrect {
		sb.WriteString(md("✅ Правильно!"))
	} else {
		sb.WriteString(md("❌ Неправильно"))
	}

	if reveal := s.RevealCorrect(); len(reveal) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(bold("Правильные ответы:"))
		for _, text := range reveal {
			sb.WriteString("\n")
			sb.WriteString(md("• " + text))
		}
	}

	return sb.String()
}

// formatCompletion renders the terminal message of a finished session.
func formatCompletion(done *entities.Completion) string {
	percentage := entities.Percentage(done.Score, done.Total)

	return fmt.Sprintf(
		"%s\n\n%s %s\n%s",
		bold("🏁 Квиз завершён!"),
		md("Итоговый счёт:"),
		bold(fmt.Sprintf("%d/%d (%d%%)", done.Score, done.Total, percentage)),
		md(buildProgressBar(done.Score, done.Total, 10)),
	)
}

// formatScore renders the /score reply.
func formatScore(s *entities.QuizSession) string {
	if done := s.Completion(); done != nil {
		return formatCompletion(done)
	}

	return fmt.Sprintf(
		"%s %s\n%s",
		md("Счёт:"),
		bold(fmt.Sprintf("%d/%d", s.Score, s.Total())),
		md(fmt.Sprintf("Вопрос %d из %d", s.CurrentIndex+1, s.Total())),
	)
}

// formatLeaderboard renders the /top reply.
func formatLeaderboard(top []*entities.QuizResult) string {
	var sb strings.Builder
	sb.WriteString(bold(fmt.Sprintf("🏆 Топ %d игроков", len(top))))
	sb.WriteString("\n\n")

	for i, res := range top {
		medal := "🔸"
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}

		sb.WriteString(md(fmt.Sprintf("%s %d. %s — %d%% (%d/%d)",
			medal, i+1, res.Player.DisplayName(), res.Percentage, res.Score, res.Total)))
		sb.WriteString("\n")
		sb.WriteString(md("   📅 " + res.CompletedAt.Format("02.01.2006 15:04")))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatSelectionHint tells the player how many options are still missing.
func formatSelectionHint(s *entities.QuizSession) string {
	missing := s.Current().RequiredSelections() - len(s.View.Selected)
	return fmt.Sprintf("Выберите ещё вариантов: %d", missing)
}

// optionMark picks the marker of an option for the current view.
func optionMark(s *entities.QuizSession, optionIndex int) string {
	if !s.View.Submitted {
		if s.View.IsSelected(optionIndex) {
			return markSelected
		}
		return markUnselected
	}

	switch s.OptionState(optionIndex) {
	case entities.OptionCorrect:
		return markCorrect
	case entities.OptionIncorrect:
		return markIncorrect
	default:
		return markNeutral
	}
}

// buildProgressBar creates an ASCII progress bar.
func buildProgressBar(current, total, length int) string {
	if total == 0 {
		return strings.Repeat("░", length)
	}

	filled := int(float64(current) / float64(total) * float64(length))
	if filled > length {
		filled = length
	}

	empty := length - filled
	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}

// truncate shortens s to limit runes for button labels.
func truncate(s string, limit int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= limit {
		return string(r)
	}
	return string(r[:limit-1]) + "…"
}
