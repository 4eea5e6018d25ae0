package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestLoadJSONBank verifies the bundled JSON format is read field by field.
func TestLoadJSONBank(t *testing.T) {
	path := writeFile(t, "bank.json", `{"questions":[
		{"question":"P1","note":"n","options":["A","B","C"],"correctAnswers":[0,2]},
		{"question":"P2","options":["X","Y"],"correctAnswers":[1]}
	]}`)

	repo, err := NewQuestionRepository(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	qs, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(qs) != 2 || repo.Count() != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].Prompt != "P1" || qs[0].Note != "n" || !slices.Equal(qs[0].CorrectAnswers, []int{0, 2}) {
		t.Fatalf("unexpected first question %+v", qs[0])
	}
}

// TestGetAllReturnsCopy verifies callers cannot reorder the bank.
func TestGetAllReturnsCopy(t *testing.T) {
	path := writeFile(t, "bank.json", `{"questions":[
		{"question":"P1","options":["A"],"correctAnswers":[0]},
		{"question":"P2","options":["B"],"correctAnswers":[0]}
	]}`)
	repo, err := NewQuestionRepository(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	qs, _ := repo.GetAll(context.Background())
	qs[0], qs[1] = qs[1], qs[0]

	again, _ := repo.GetAll(context.Background())
	if again[0].Prompt != "P1" {
		t.Fatalf("bank was modified through GetAll")
	}
}

// TestLoadYAMLBank verifies YAML banks use the same keys.
func TestLoadYAMLBank(t *testing.T) {
	path := writeFile(t, "bank.yaml", `questions:
  - question: P1
    note: choose two
    options: [A, B, C]
    correctAnswers: [1, 2]
`)

	repo, err := NewQuestionRepository(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	qs, _ := repo.GetAll(context.Background())
	if len(qs) != 1 || qs[0].Note != "choose two" || !slices.Equal(qs[0].Options, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected questions %+v", qs)
	}
}

// TestLoadXLSXBank verifies the spreadsheet layout and separators.
func TestLoadXLSXBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"question", "note", "options", "correctAnswers"},
		{"P1", "", "A, with comma;B;C", "0, 2"},
		{"", "", "", ""},
		{"P2", "hint", "X\nY", "1"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	repo, err := NewQuestionRepository(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	qs, _ := repo.GetAll(context.Background())
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if !slices.Equal(qs[0].Options, []string{"A, with comma", "B", "C"}) {
		t.Fatalf("unexpected options %q", qs[0].Options)
	}
	if !slices.Equal(qs[0].CorrectAnswers, []int{0, 2}) {
		t.Fatalf("unexpected answers %v", qs[0].CorrectAnswers)
	}
	if qs[1].Note != "hint" || len(qs[1].Options) != 2 {
		t.Fatalf("unexpected second question %+v", qs[1])
	}
}

// TestLoadRejectsInvalidQuestion verifies validation fails the whole load.
func TestLoadRejectsInvalidQuestion(t *testing.T) {
	path := writeFile(t, "bank.json", `{"questions":[{"question":"P1","options":["A"],"correctAnswers":[3]}]}`)

	_, err := NewQuestionRepository(path)
	if !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}
}

// TestLoadEmptyBank verifies an empty bank loads without error.
func TestLoadEmptyBank(t *testing.T) {
	path := writeFile(t, "bank.json", `{"questions":[]}`)

	repo, err := NewQuestionRepository(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if repo.Count() != 0 {
		t.Fatalf("expected empty bank")
	}
}

// TestLoadUnsupportedFormat verifies unknown extensions are rejected.
func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "bank.csv", "")

	if _, err := NewQuestionRepository(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
