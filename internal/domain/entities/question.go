package entities

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrEmptyPrompt         = errors.New("question prompt is empty")
	ErrNoOptions           = errors.New("question has no options")
	ErrNoCorrectAnswers    = errors.New("question has no correct answers")
	ErrCorrectOutOfRange   = errors.New("correct answer index out of range")
	ErrDuplicateCorrectIdx = errors.New("duplicate correct answer index")
)

// Question is a single quiz item.
// CorrectAnswers holds indices into the original, unshuffled Options.
type Question struct {
	Prompt         string   `json:"question" yaml:"question"`
	Note           string   `json:"note,omitempty" yaml:"note,omitempty"`
	Options        []string `json:"options" yaml:"options"`
	CorrectAnswers []int    `json:"correctAnswers" yaml:"correctAnswers"`
}

// Validate checks that the question can be played.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if len(q.Options) == 0 {
		return ErrNoOptions
	}
	if len(q.CorrectAnswers) == 0 {
		return ErrNoCorrectAnswers
	}

	seen := make(map[int]struct{}, len(q.CorrectAnswers))
	for _, idx := range q.CorrectAnswers {
		if idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("%w: %d (options: %d)", ErrCorrectOutOfRange, idx, len(q.Options))
		}
		if _, ok := seen[idx]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateCorrectIdx, idx)
		}
		seen[idx] = struct{}{}
	}

	return nil
}

// RequiredSelections is the number of options a player must pick before submitting.
func (q Question) RequiredSelections() int {
	return len(q.CorrectAnswers)
}

// IsCorrect reports whether the option with the given original index is a correct answer.
func (q Question) IsCorrect(optionIndex int) bool {
	return slices.Contains(q.CorrectAnswers, optionIndex)
}

// HasOption reports whether optionIndex addresses one of the question's options.
func (q Question) HasOption(optionIndex int) bool {
	return optionIndex >= 0 && optionIndex < len(q.Options)
}

// Matches compares selected with the correct answers as sets.
func (q Question) Matches(selected []int) bool {
	if len(selected) != len(q.CorrectAnswers) {
		return false
	}

	a := slices.Clone(selected)
	b := slices.Clone(q.CorrectAnswers)
	slices.Sort(a)
	slices.Sort(b)

	return slices.Equal(slices.Compact(a), b)
}

// CorrectTexts returns the texts of the correct options in the order the dataset lists them.
func (q Question) CorrectTexts() []string {
	texts := make([]string, 0, len(q.CorrectAnswers))
	for _, i := range q.CorrectAnswers {
		texts = append(texts, q.Options[i])
	}
	return texts
}
