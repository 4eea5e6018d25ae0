package entities

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"
)

// noShuffle keeps the input order so tests can address options by position.
func noShuffle(int, func(i, j int)) {}

// reverseShuffle reverses the input order.
func reverseShuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func sampleQuestions() []Question {
	return []Question{
		{Prompt: "P1", Options: []string{"A", "B", "C"}, CorrectAnswers: []int{0, 2}},
		{Prompt: "P2", Note: "pick one", Options: []string{"X", "Y"}, CorrectAnswers: []int{1}},
		{Prompt: "P3", Options: []string{"K", "L", "M", "N"}, CorrectAnswers: []int{3, 1}},
	}
}

func newSession(t *testing.T, questions []Question, shuffle ShuffleFunc) *QuizSession {
	t.Helper()
	s, err := NewQuizSession("session-1", Player{ChatID: 42}, questions, shuffle)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// TestNewQuizSessionEmptyDataset verifies an empty bank cannot start a session.
func TestNewQuizSessionEmptyDataset(t *testing.T) {
	_, err := NewQuizSession("id", Player{}, nil, noShuffle)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

// TestNewQuizSessionPermutesQuestions verifies questions are a permutation and the input is untouched.
func TestNewQuizSessionPermutesQuestions(t *testing.T) {
	input := sampleQuestions()
	s := newSession(t, input, reverseShuffle)

	if s.Total() != len(input) {
		t.Fatalf("expected %d questions, got %d", len(input), s.Total())
	}
	if s.Questions[0].Prompt != "P3" || s.Questions[2].Prompt != "P1" {
		t.Fatalf("expected reversed order, got %q..%q", s.Questions[0].Prompt, s.Questions[2].Prompt)
	}
	if input[0].Prompt != "P1" {
		t.Fatalf("input slice was reordered")
	}
	if s.Status != StatusActive || s.CurrentIndex != 0 || s.Score != 0 {
		t.Fatalf("unexpected initial state: %+v", s)
	}
}

// TestLoadQuestionResetsView verifies every loaded question starts unanswered with all options shown.
func TestLoadQuestionResetsView(t *testing.T) {
	s := newSession(t, sampleQuestions(), rand.Shuffle)

	for {
		q := s.Current()
		if len(s.View.Selected) != 0 || s.View.Submitted {
			t.Fatalf("question %d not reset: %+v", s.CurrentIndex, s.View)
		}
		if len(s.View.Options) != len(q.Options) {
			t.Fatalf("expected %d options, got %d", len(q.Options), len(s.View.Options))
		}
		seen := map[int]bool{}
		for _, opt := range s.View.Options {
			if q.Options[opt.Index] != opt.Text {
				t.Fatalf("option %d text mismatch: %q", opt.Index, opt.Text)
			}
			seen[opt.Index] = true
		}
		if len(seen) != len(q.Options) {
			t.Fatalf("options are not a permutation: %+v", s.View.Options)
		}

		for _, idx := range q.CorrectAnswers {
			s.Toggle(idx)
		}
		if _, err := s.Submit(); err != nil {
			t.Fatalf("submit: %v", err)
		}
		done, err := s.Advance()
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if done != nil {
			break
		}
	}
}

// TestToggleRespectsCapacity verifies selection never exceeds the required count and deselecting always works.
func TestToggleRespectsCapacity(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)

	if !s.Toggle(0) || !s.Toggle(1) {
		t.Fatalf("expected first two selections to succeed")
	}
	if s.Toggle(2) {
		t.Fatalf("expected over-selection to be rejected")
	}
	if !slices.Equal(s.View.Selected, []int{0, 1}) {
		t.Fatalf("unexpected selection %v", s.View.Selected)
	}
	if !s.Toggle(0) {
		t.Fatalf("expected deselect at capacity to succeed")
	}
	if !s.Toggle(2) {
		t.Fatalf("expected select after deselect to succeed")
	}
	if !slices.Equal(s.View.Selected, []int{1, 2}) {
		t.Fatalf("unexpected selection %v", s.View.Selected)
	}
}

// TestToggleIgnoresUnknownOption verifies out-of-range indices are silently rejected.
func TestToggleIgnoresUnknownOption(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	if s.Toggle(-1) || s.Toggle(3) {
		t.Fatalf("expected unknown options to be rejected")
	}
	if len(s.View.Selected) != 0 {
		t.Fatalf("selection changed: %v", s.View.Selected)
	}
}

// TestToggleRandomSequenceStaysBounded verifies random toggling never breaks the capacity bound.
func TestToggleRandomSequenceStaysBounded(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	r := rand.New(rand.NewPCG(1, 2))

	for range 500 {
		s.Toggle(r.IntN(5) - 1)
		if len(s.View.Selected) > s.Current().RequiredSelections() {
			t.Fatalf("selection exceeded capacity: %v", s.View.Selected)
		}
	}
}

// TestSubmitRequiresFullSelection verifies premature submits change nothing.
func TestSubmitRequiresFullSelection(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	s.Toggle(0)

	if s.CanSubmit() {
		t.Fatalf("expected submit to be unavailable")
	}
	if _, err := s.Submit(); !errors.Is(err, ErrSubmitNotReady) {
		t.Fatalf("expected ErrSubmitNotReady, got %v", err)
	}
	if s.View.Submitted || s.Score != 0 || len(s.Answers) != 0 {
		t.Fatalf("premature submit changed state: %+v", s)
	}
}

// TestSubmitGradesAsSet verifies order-independent grading and a single increment.
func TestSubmitGradesAsSet(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	s.Toggle(2)
	s.Toggle(0)

	correct, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !correct || s.Score != 1 {
		t.Fatalf("expected correct answer and score 1, got %v/%d", correct, s.Score)
	}
	if _, err := s.Submit(); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if s.Score != 1 {
		t.Fatalf("score changed on second submit: %d", s.Score)
	}
	if s.Toggle(1) || s.Toggle(0) {
		t.Fatalf("expected selection to be frozen after submit")
	}
}

// TestSubmitWrongAnswer verifies a mismatched set does not score.
func TestSubmitWrongAnswer(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	s.Toggle(0)
	s.Toggle(1)

	correct, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if correct || s.Score != 0 {
		t.Fatalf("expected wrong answer, got %v/%d", correct, s.Score)
	}
	if len(s.Answers) != 1 || s.Answers[0].IsCorrect {
		t.Fatalf("unexpected answer log %+v", s.Answers)
	}
}

// TestOptionStateAfterSubmit verifies highlight classification before and after grading.
func TestOptionStateAfterSubmit(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	s.Toggle(0)
	s.Toggle(1)

	for i := range 3 {
		if got := s.OptionState(i); got != OptionNeutral {
			t.Fatalf("option %d before submit: %s", i, got)
		}
	}

	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := []OptionState{OptionCorrect, OptionIncorrect, OptionCorrect}
	for i, w := range want {
		for range 3 {
			if got := s.OptionState(i); got != w {
				t.Fatalf("option %d: expected %s, got %s", i, w, got)
			}
		}
	}

	reveal := s.RevealCorrect()
	if !slices.Equal(reveal, []string{"A", "C"}) {
		t.Fatalf("unexpected reveal %v", reveal)
	}
}

// TestRevealHiddenWhenAllSelectedCorrect verifies no reveal without a wrong pick.
func TestRevealHiddenWhenAllSelectedCorrect(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	s.Toggle(0)
	s.Toggle(2)
	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if reveal := s.RevealCorrect(); reveal != nil {
		t.Fatalf("expected no reveal, got %v", reveal)
	}
}

// TestAdvanceRequiresSubmit verifies Advance is rejected while the question is unanswered.
func TestAdvanceRequiresSubmit(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	if _, err := s.Advance(); !errors.Is(err, ErrNotSubmitted) {
		t.Fatalf("expected ErrNotSubmitted, got %v", err)
	}
	if s.CurrentIndex != 0 {
		t.Fatalf("index moved to %d", s.CurrentIndex)
	}
}

// TestAdvanceLoadsNextQuestion verifies Advance steps exactly one question forward.
func TestAdvanceLoadsNextQuestion(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	s.Toggle(0)
	s.Toggle(2)
	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	done, err := s.Advance()
	if err != nil || done != nil {
		t.Fatalf("expected plain advance, got %v, %v", done, err)
	}
	if s.CurrentIndex != 1 || s.Current().Prompt != "P2" {
		t.Fatalf("expected second question, got %d %q", s.CurrentIndex, s.Current().Prompt)
	}
	if s.View.Submitted || len(s.View.Selected) != 0 {
		t.Fatalf("view not reset: %+v", s.View)
	}
}

// TestEndToEndSingleQuestion walks the single-question scenario through completion.
func TestEndToEndSingleQuestion(t *testing.T) {
	questions := []Question{{Prompt: "P1", Options: []string{"A", "B", "C"}, CorrectAnswers: []int{0, 2}}}
	s := newSession(t, questions, rand.Shuffle)
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.SetClock(func() time.Time { return clock })

	s.Toggle(0)
	s.Toggle(2)
	if s.Toggle(1) {
		t.Fatalf("expected third selection to be rejected")
	}
	if len(s.View.Selected) != 2 {
		t.Fatalf("expected two selections, got %v", s.View.Selected)
	}

	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !s.View.Submitted || s.Score != 1 {
		t.Fatalf("expected graded state with score 1, got %+v", s)
	}
	if s.OptionState(0) != OptionCorrect || s.OptionState(2) != OptionCorrect || s.OptionState(1) != OptionNeutral {
		t.Fatalf("unexpected option states")
	}

	done, err := s.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if done == nil || done.Score != 1 || done.Total != 1 {
		t.Fatalf("expected completion 1/1, got %+v", done)
	}
	if s.Status != StatusCompleted || s.CompletedAt == nil || !s.CompletedAt.Equal(clock) {
		t.Fatalf("expected completed state at %v, got %+v", clock, s)
	}
	if _, err := s.Advance(); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
	if got := s.Completion(); got == nil || *got != *done {
		t.Fatalf("completion not retained: %+v", got)
	}
}

// TestAbandonStopsSession verifies an abandoned session rejects further actions.
func TestAbandonStopsSession(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	s.Abandon()

	if s.Status != StatusAbandoned {
		t.Fatalf("expected abandoned, got %s", s.Status)
	}
	if s.Toggle(0) {
		t.Fatalf("expected toggle to be rejected")
	}
	if _, err := s.Submit(); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
	if s.Completion() != nil {
		t.Fatalf("abandoned session must not report completion")
	}
}

// TestSnapshotIsIndependent verifies changes on either side never leak into the other.
func TestSnapshotIsIndependent(t *testing.T) {
	s := newSession(t, sampleQuestions(), noShuffle)
	s.Toggle(0)

	snap := s.Snapshot()
	s.Toggle(2)
	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	s.Abandon()

	if snap.Status != StatusActive || snap.View.Submitted || !slices.Equal(snap.View.Selected, []int{0}) || len(snap.Answers) != 0 {
		t.Fatalf("snapshot changed with the session: %+v", snap)
	}

	snap.Toggle(1)
	if slices.Contains(s.View.Selected, 1) {
		t.Fatalf("session changed with the snapshot: %v", s.View.Selected)
	}
}
