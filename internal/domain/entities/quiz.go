package entities

import (
	"errors"
	"slices"
	"time"
)

var (
	ErrEmptyDataset     = errors.New("no questions available")
	ErrSubmitNotReady   = errors.New("selection is incomplete")
	ErrAlreadySubmitted = errors.New("answer already submitted")
	ErrNotSubmitted     = errors.New("answer not submitted yet")
	ErrSessionCompleted = errors.New("quiz session is not active")
)

// SessionStatus is the lifecycle state of a quiz session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusAbandoned SessionStatus = "abandoned"
)

// OptionState is the display classification of an option.
type OptionState int

const (
	OptionNeutral OptionState = iota
	OptionCorrect
	OptionIncorrect
)

func (s OptionState) String() string {
	switch s {
	case OptionCorrect:
		return "correct"
	case OptionIncorrect:
		return "incorrect"
	default:
		return "neutral"
	}
}

// ShuffleFunc permutes n elements through swap. rand.Shuffle satisfies it.
type ShuffleFunc func(n int, swap func(i, j int))

// Player identifies who plays a session.
type Player struct {
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
}

// DisplayName returns the name to show on the leaderboard.
func (p Player) DisplayName() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	return "anonymous"
}

// ShuffledOption is an option at its display position, keeping its original index.
type ShuffledOption struct {
	Index int
	Text  string
}

// QuestionView is the transient state of the current question.
type QuestionView struct {
	Options   []ShuffledOption // display order
	Selected  []int            // original option indices, in selection order
	Submitted bool
}

// IsSelected reports whether the option with the given original index is selected.
func (v QuestionView) IsSelected(optionIndex int) bool {
	return slices.Contains(v.Selected, optionIndex)
}

// QuizAnswer records how one question was graded.
type QuizAnswer struct {
	Prompt    string
	Selected  []int
	Correct   []int
	IsCorrect bool
}

// Completion is the final outcome of a session.
type Completion struct {
	Score int
	Total int
}

// QuizSession drives one play-through over a shuffled question list.
type QuizSession struct {
	ID           string
	Player       Player
	Questions    []Question
	CurrentIndex int
	Score        int
	Status       SessionStatus
	View         QuestionView
	Answers      []QuizAnswer
	StartedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time

	shuffle ShuffleFunc
	now     func() time.Time
}

// NewQuizSession creates a session over a random permutation of questions and loads the first one.
// The input slice is not modified.
func NewQuizSession(id string, player Player, questions []Question, shuffle ShuffleFunc) (*QuizSession, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyDataset
	}

	qs := slices.Clone(questions)
	shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})

	s := &QuizSession{
		ID:        id,
		Player:    player,
		Questions: qs,
		Status:    StatusActive,
		Answers:   make([]QuizAnswer, 0, len(qs)),
		shuffle:   shuffle,
		now:       time.Now,
	}
	s.StartedAt = s.now()
	s.UpdatedAt = s.StartedAt
	s.loadQuestion(0)

	return s, nil
}

// Snapshot returns a copy of s that shares no mutable state with it.
// Questions are shared: they are never modified after the session is created.
func (s *QuizSession) Snapshot() *QuizSession {
	c := *s
	c.View.Options = slices.Clone(s.View.Options)
	c.View.Selected = slices.Clone(s.View.Selected)
	c.Answers = slices.Clone(s.Answers)
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// SetClock replaces the session's time source.
func (s *QuizSession) SetClock(now func() time.Time) {
	s.now = now
}

// Total is the number of questions in the session.
func (s *QuizSession) Total() int {
	return len(s.Questions)
}

// Current returns the question being played.
func (s *QuizSession) Current() Question {
	return s.Questions[s.CurrentIndex]
}

// IsLast reports whether the current question is the final one.
func (s *QuizSession) IsLast() bool {
	return s.CurrentIndex == len(s.Questions)-1
}

// IsActive reports whether the session still accepts actions.
func (s *QuizSession) IsActive() bool {
	return s.Status == StatusActive
}

// loadQuestion resets the view for questions[index] with freshly shuffled options.
func (s *QuizSession) loadQuestion(index int) {
	s.CurrentIndex = index
	q := s.Questions[index]

	opts := make([]ShuffledOption, len(q.Options))
	for i, text := range q.Options {
		opts[i] = ShuffledOption{Index: i, Text: text}
	}
	s.shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})

	s.View = QuestionView{
		Options:  opts,
		Selected: make([]int, 0, q.RequiredSelections()),
	}
}

// Toggle flips the selection of the option with the given original index.
// Deselecting is always allowed; selecting is allowed only below the required count.
// Rejected attempts leave the state untouched and return false.
func (s *QuizSession) Toggle(optionIndex int) bool {
	if !s.IsActive() || s.View.Submitted {
		return false
	}

	q := s.Current()
	if !q.HasOption(optionIndex) {
		return false
	}

	if i := slices.Index(s.View.Selected, optionIndex); i >= 0 {
		s.View.Selected = slices.Delete(s.View.Selected, i, i+1)
		s.touch()
		return true
	}

	if len(s.View.Selected) >= q.RequiredSelections() {
		return false
	}

	s.View.Selected = append(s.View.Selected, optionIndex)
	s.touch()
	return true
}

// CanSubmit reports whether Submit would grade the current question.
func (s *QuizSession) CanSubmit() bool {
	return s.IsActive() &&
		!s.View.Submitted &&
		len(s.View.Selected) == s.Current().RequiredSelections()
}

// Submit grades the current selection. The score grows by one when the
// selection equals the correct answers as a set.
func (s *QuizSession) Submit() (bool, error) {
	switch {
	case !s.IsActive():
		return false, ErrSessionCompleted
	case s.View.Submitted:
		return false, ErrAlreadySubmitted
	case !s.CanSubmit():
		return false, ErrSubmitNotReady
	}

	q := s.Current()
	s.View.Submitted = true

	correct := q.Matches(s.View.Selected)
	if correct {
		s.Score++
	}

	s.Answers = append(s.Answers, QuizAnswer{
		Prompt:    q.Prompt,
		Selected:  slices.Clone(s.View.Selected),
		Correct:   slices.Clone(q.CorrectAnswers),
		IsCorrect: correct,
	})
	s.touch()

	return correct, nil
}

// Advance moves to the next question once the current one is graded.
// On the last question the session completes and the returned Completion is non-nil.
func (s *QuizSession) Advance() (*Completion, error) {
	if !s.IsActive() {
		return nil, ErrSessionCompleted
	}
	if !s.View.Submitted {
		return nil, ErrNotSubmitted
	}

	if !s.IsLast() {
		s.loadQuestion(s.CurrentIndex + 1)
		s.touch()
		return nil, nil
	}

	s.Status = StatusCompleted
	now := s.now()
	s.CompletedAt = &now
	s.UpdatedAt = now

	return s.Completion(), nil
}

// Completion returns the final outcome, or nil while the session is not completed.
func (s *QuizSession) Completion() *Completion {
	if s.Status != StatusCompleted {
		return nil
	}
	return &Completion{Score: s.Score, Total: s.Total()}
}

// Abandon stops the session without completing it.
func (s *QuizSession) Abandon() {
	if !s.IsActive() {
		return
	}
	s.Status = StatusAbandoned
	s.touch()
}

// OptionState classifies the option with the given original index for display.
// Every correct option is highlighted after submission, whether selected or not.
func (s *QuizSession) OptionState(optionIndex int) OptionState {
	if !s.View.Submitted {
		return OptionNeutral
	}

	q := s.Current()
	if q.IsCorrect(optionIndex) {
		return OptionCorrect
	}
	if s.View.IsSelected(optionIndex) {
		return OptionIncorrect
	}
	return OptionNeutral
}

// HasWrongSelection reports whether a submitted selection contains an incorrect option.
func (s *QuizSession) HasWrongSelection() bool {
	if !s.View.Submitted {
		return false
	}

	q := s.Current()
	for _, idx := range s.View.Selected {
		if !q.IsCorrect(idx) {
			return true
		}
	}
	return false
}

// RevealCorrect returns the correct option texts when the player picked a wrong option, nil otherwise.
func (s *QuizSession) RevealCorrect() []string {
	if !s.HasWrongSelection() {
		return nil
	}
	return s.Current().CorrectTexts()
}

// Percentage is the share of correctly answered questions out of the total.
func (s *QuizSession) Percentage() int {
	return Percentage(s.Score, s.Total())
}

func (s *QuizSession) touch() {
	s.UpdatedAt = s.now()
}

// Percentage returns score as a whole percentage of total.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return score * 100 / total
}
