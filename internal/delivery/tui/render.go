package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

const (
	colorHeader = lipgloss.Color("33")
	colorMuted  = lipgloss.Color("242")
	colorRight  = lipgloss.Color("42")
	colorWrong  = lipgloss.Color("196")
	colorAccent = lipgloss.Color("214")
)

// renderQuestion renders the current question with the cursor on one option.
func renderQuestion(s *entities.QuizSession, cursor int, noColor bool) string {
	q := s.Current()
	lines := []string{
		stylize(fmt.Sprintf("Score: %d/%d   Question %d of %d", s.Score, s.Total(), s.CurrentIndex+1, s.Total()), noColor, colorHeader),
		"",
		q.Prompt,
	}
	if q.Note != "" {
		lines = append(lines, stylize(q.Note, noColor, colorMuted))
	}
	lines = append(lines, "")

	for pos, opt := range s.View.Options {
		pointer := "  "
		if pos == cursor {
			pointer = "> "
		}
		lines = append(lines, pointer+renderOption(s, opt, noColor))
	}
	lines = append(lines, "")

	if !s.View.Submitted {
		control := fmt.Sprintf("[Submit %d/%d]", len(s.View.Selected), q.RequiredSelections())
		if !s.CanSubmit() {
			control = stylize(control, noColor, colorMuted)
		}
		lines = append(lines, control)
		return strings.Join(lines, "\n")
	}

	if s.Answers[len(s.Answers)-1].IsCorrect {
		lines = append(lines, stylize("Correct!", noColor, colorRight))
	} else {
		lines = append(lines, stylize("Incorrect.", noColor, colorWrong))
	}
	if reveal := s.RevealCorrect(); len(reveal) > 0 {
		lines = append(lines, "Correct answers: "+strings.Join(reveal, "; "))
	}

	next := "[Next]"
	if s.IsLast() {
		next = "[Finish]"
	}
	lines = append(lines, "", next)

	return strings.Join(lines, "\n")
}

// renderOption renders one option line with its selection or grading mark.
func renderOption(s *entities.QuizSession, opt entities.ShuffledOption, noColor bool) string {
	if !s.View.Submitted {
		mark := "[ ]"
		if s.View.IsSelected(opt.Index) {
			mark = "[x]"
		}
		return mark + " " + opt.Text
	}

	switch s.OptionState(opt.Index) {
	case entities.OptionCorrect:
		return stylize("[✓] "+opt.Text, noColor, colorRight)
	case entities.OptionIncorrect:
		return stylize("[✗] "+opt.Text, noColor, colorWrong)
	default:
		return "[ ] " + opt.Text
	}
}

// renderCompletion renders the final score screen.
func renderCompletion(done *entities.Completion, noColor bool) string {
	if done == nil {
		return ""
	}
	line := fmt.Sprintf("Quiz complete! Final score: %d/%d (%d%%)",
		done.Score, done.Total, entities.Percentage(done.Score, done.Total))
	return stylize(line, noColor, colorHeader)
}

func selectHint(missing int) string {
	if missing == 1 {
		return "Select 1 more option to submit."
	}
	return fmt.Sprintf("Select %d more options to submit.", missing)
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
