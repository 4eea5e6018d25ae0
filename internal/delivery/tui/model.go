package tui

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

// LoadFunc fetches the question bank.
type LoadFunc func(ctx context.Context) ([]entities.Question, error)

type phase int

const (
	phaseLoading phase = iota
	phaseEmpty
	phaseFailed
	phasePlaying
	phaseDone
)

// Options configures the quiz model.
type Options struct {
	NoColor bool
	Shuffle entities.ShuffleFunc
	Logger  *zap.Logger
}

// Model is a terminal front-end for one local player.
type Model struct {
	load    LoadFunc
	shuffle entities.ShuffleFunc
	logger  *zap.Logger
	noColor bool

	keys keyMap
	help help.Model

	phase     phase
	questions []entities.Question
	session   *entities.QuizSession
	cursor    int
	status    string
	err       error
}

// NewModel constructs a quiz model that loads its questions with load.
func NewModel(load LoadFunc, opts Options) Model {
	shuffle := opts.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return Model{
		load:    load,
		shuffle: shuffle,
		logger:  logger,
		noColor: opts.NoColor,
		keys:    defaultKeyMap(),
		help:    help.New(),
		phase:   phaseLoading,
	}
}

// loadedMsg carries the result of the asynchronous bank load.
type loadedMsg struct {
	questions []entities.Question
	err       error
}

// Init starts loading the question bank.
func (m Model) Init() tea.Cmd {
	return loadQuestions(m.load)
}

func loadQuestions(load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		questions, err := load(context.Background())
		return loadedMsg{questions: questions, err: err}
	}
}

// Update handles the bank load and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = typed.Width
		return m, nil
	case loadedMsg:
		return m.applyLoaded(typed), nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) applyLoaded(msg loadedMsg) Model {
	if msg.err != nil {
		m.logger.Error("failed to load questions", zap.Error(msg.err))
		m.phase = phaseFailed
		m.err = msg.err
		return m
	}

	m.questions = msg.questions
	m.logger.Info("questions loaded", zap.Int("count", len(msg.questions)))
	return m.restart()
}

// restart begins a new session over the loaded bank.
func (m Model) restart() Model {
	session, err := entities.NewQuizSession(uuid.NewString(), entities.Player{}, m.questions, m.shuffle)
	if errors.Is(err, entities.ErrEmptyDataset) {
		m.phase = phaseEmpty
		return m
	}
	if err != nil {
		m.phase = phaseFailed
		m.err = err
		return m
	}

	m.session = session
	m.phase = phasePlaying
	m.cursor = 0
	m.status = ""
	m.keys.Restart.SetEnabled(false)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.phase {
	case phasePlaying:
		return m.handlePlayingKey(msg), nil
	case phaseDone:
		if key.Matches(msg, m.keys.Restart) {
			return m.restart(), nil
		}
	}
	return m, nil
}

func (m Model) handlePlayingKey(msg tea.KeyMsg) Model {
	options := m.session.View.Options

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(options)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		m.status = ""
		if !m.session.Toggle(options[m.cursor].Index) && !m.session.View.Submitted {
			m.status = "Selection is full: deselect an option first."
		}
	case key.Matches(msg, m.keys.Confirm):
		return m.confirm()
	}
	return m
}

// confirm submits an unanswered question or advances past a graded one.
func (m Model) confirm() Model {
	m.status = ""

	if !m.session.View.Submitted {
		if _, err := m.session.Submit(); errors.Is(err, entities.ErrSubmitNotReady) {
			missing := m.session.Current().RequiredSelections() - len(m.session.View.Selected)
			m.status = selectHint(missing)
		}
		return m
	}

	done, err := m.session.Advance()
	if err != nil {
		m.status = err.Error()
		return m
	}
	if done != nil {
		m.logger.Info("quiz completed",
			zap.String("session_id", m.session.ID),
			zap.Int("score", done.Score),
			zap.Int("total", done.Total),
		)
		m.phase = phaseDone
		m.keys.Restart.SetEnabled(true)
		return m
	}

	m.cursor = 0
	return m
}

// View renders the current screen.
func (m Model) View() string {
	var body string
	switch m.phase {
	case phaseLoading:
		body = stylize("Loading…", m.noColor, colorMuted)
	case phaseEmpty:
		body = stylize("No questions available yet.", m.noColor, colorMuted)
	case phaseFailed:
		body = stylize("Failed to load questions: "+m.err.Error(), m.noColor, colorWrong)
	case phasePlaying:
		body = renderQuestion(m.session, m.cursor, m.noColor)
	case phaseDone:
		body = renderCompletion(m.session.Completion(), m.noColor)
	}

	parts := []string{body}
	if m.status != "" {
		parts = append(parts, "", stylize(m.status, m.noColor, colorAccent))
	}
	parts = append(parts, "", m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}
