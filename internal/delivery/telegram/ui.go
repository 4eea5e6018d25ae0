package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

// buildQuestionKeyboard builds the option buttons of the current question plus
// the submit button (unanswered) or the next button (graded).
func buildQuestionKeyboard(s *entities.QuizSession) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(s.View.Options)+1)

	for pos, opt := range s.View.Options {
		label := fmt.Sprintf("%s %d. %s", optionMark(s, opt.Index), pos+1, truncate(opt.Text, buttonTextLimit))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildQuizToggleCallback(s.ID, s.CurrentIndex, opt.Index)),
		))
	}

	var control tgbotapi.InlineKeyboardButton
	switch {
	case !s.View.Submitted:
		label := fmt.Sprintf("Ответить (%d/%d)", len(s.View.Selected), s.Current().RequiredSelections())
		control = tgbotapi.NewInlineKeyboardButtonData(label, buildQuizSubmitCallback(s.ID, s.CurrentIndex))
	case s.IsLast():
		control = tgbotapi.NewInlineKeyboardButtonData("🏁 Завершить", buildQuizNextCallback(s.ID, s.CurrentIndex))
	default:
		control = tgbotapi.NewInlineKeyboardButtonData("Следующий вопрос ▶️", buildQuizNextCallback(s.ID, s.CurrentIndex))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(control))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildQuizResultKeyboard builds keyboard for quiz results screen.
func buildQuizResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Новый квиз", buildQuizStartCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏆 Лидерборд", buildTopCallback()),
		),
	)
}

// buildStartKeyboard builds keyboard for the welcome message.
func buildStartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Начать квиз", buildQuizStartCallback()),
		),
	)
}
