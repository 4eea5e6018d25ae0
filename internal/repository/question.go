package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/aliskhannn/ots-quiz-bot/internal/domain/entities"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported question bank format")
	ErrInvalidQuestion   = errors.New("invalid question")
)

// xlsx column layout: question | note | options | correctAnswers
const (
	colPrompt = iota
	colNote
	colOptions
	colCorrect
)

// QuestionRepository provides read-only access to the question bank.
type QuestionRepository struct {
	questions []entities.Question
}

// NewQuestionRepository loads the question bank from path. The format is chosen by extension.
func NewQuestionRepository(path string) (*QuestionRepository, error) {
	questions, err := loadQuestions(path)
	if err != nil {
		return nil, fmt.Errorf("load questions from %s: %w", path, err)
	}

	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w #%d: %w", ErrInvalidQuestion, i+1, err)
		}
	}

	return &QuestionRepository{questions: questions}, nil
}

// NewQuestionRepositoryFrom wraps an in-memory question bank.
func NewQuestionRepositoryFrom(questions []entities.Question) *QuestionRepository {
	return &QuestionRepository{questions: slices.Clone(questions)}
}

// GetAll returns a copy of the question bank.
func (r *QuestionRepository) GetAll(_ context.Context) ([]entities.Question, error) {
	return slices.Clone(r.questions), nil
}

// Count returns the number of questions in the bank.
func (r *QuestionRepository) Count() int {
	return len(r.questions)
}

func loadQuestions(path string) ([]entities.Question, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	case ".xlsx":
		return loadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func loadJSON(path string) ([]entities.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Questions []entities.Question `json:"questions"`
	}
	if err = json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions JSON: %w", err)
	}

	return wrapper.Questions, nil
}

func loadYAML(path string) ([]entities.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Questions []entities.Question `yaml:"questions"`
	}
	if err = yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions YAML: %w", err)
	}

	return wrapper.Questions, nil
}

// loadXLSX reads the first sheet. The first row is a header.
func loadXLSX(path string) ([]entities.Question, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var questions []entities.Question
	for i, r := range rows {
		if i == 0 || isBlankRow(r) {
			continue
		}

		q, err := parseRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}

	return questions, nil
}

func parseRow(r []string) (entities.Question, error) {
	cell := func(i int) string {
		if i < len(r) {
			return strings.TrimSpace(r[i])
		}
		return ""
	}

	q := entities.Question{
		Prompt:  cell(colPrompt),
		Note:    cell(colNote),
		Options: splitOptions(cell(colOptions)),
	}

	for _, raw := range splitIndices(cell(colCorrect)) {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return entities.Question{}, fmt.Errorf("%w: correct answer %q is not a number", ErrInvalidQuestion, raw)
		}
		q.CorrectAnswers = append(q.CorrectAnswers, idx)
	}

	return q, nil
}

// splitOptions splits option cells on ';' and newlines; option texts may contain commas.
func splitOptions(s string) []string {
	return splitBy(s, func(r rune) bool {
		return r == ';' || r == '\n' || r == '；'
	})
}

// splitIndices splits answer cells like "0;2", "0, 2" or "0 2".
func splitIndices(s string) []string {
	return splitBy(s, func(r rune) bool {
		return r == ';' || r == ',' || r == ' ' || r == '\n' || r == '；' || r == '，'
	})
}

func splitBy(s string, sep func(rune) bool) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isBlankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
