package app_test

import (
	"testing"

	"mocktest-service/internal/app"
	"mocktest-service/internal/domain"
)

func mcQuestion(marks float64) domain.Question {
	return domain.Question{
		ID:   "q1",
		Type: domain.QuestionMultipleChoice,
		Options: []domain.Option{
			{Text: "A", Correct: false},
			{Text: "B", Correct: true},
			{Text: "C", Correct: false},
		},
		Marks: marks,
	}
}

func msQuestion() domain.Question {
	return domain.Question{
		ID:   "q2",
		Type: domain.QuestionMultipleSelect,
		Options: []domain.Option{
			{Text: "A", Correct: true},
			{Text: "B", Correct: true},
			{Text: "C", Correct: false},
		},
		Marks: 2,
	}
}

func TestGradeAnswerUnansweredNeverPenalized(t *testing.T) {
	tests := []struct {
		name   string
		answer domain.Answer
	}{
		{"missing", domain.Unanswered()},
		{"empty string", domain.SingleAnswer("")},
		{"whitespace string", domain.SingleAnswer("   ")},
		{"empty list", domain.MultipleAnswer(nil)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := app.GradeAnswer(mcQuestion(2), tc.answer, 1, 5)
			if got.Answered || got.Correct || got.Marks != 0 {
				t.Fatalf("expected zero outcome, got %+v", got)
			}
		})
	}
}

func TestGradeAnswerSingleChoice(t *testing.T) {
	question := mcQuestion(2)

	correct := app.GradeAnswer(question, domain.SingleAnswer("B"), 1, 0.5)
	if !correct.Correct || correct.Marks != 2 {
		t.Fatalf("expected correct with 2 marks, got %+v", correct)
	}

	wrong := app.GradeAnswer(question, domain.SingleAnswer("A"), 1, 0.5)
	if wrong.Correct || wrong.Marks != -0.5 {
		t.Fatalf("expected wrong with -0.5 marks, got %+v", wrong)
	}
}

func TestGradeAnswerFallsBackToDefaultMarks(t *testing.T) {
	question := mcQuestion(0)
	got := app.GradeAnswer(question, domain.SingleAnswer("B"), 3, 1)
	if !got.Correct || got.Marks != 3 {
		t.Fatalf("expected test-default 3 marks, got %+v", got)
	}
}

func TestGradeAnswerMultiSelectSetEquality(t *testing.T) {
	question := msQuestion()
	tests := []struct {
		name    string
		values  []string
		correct bool
	}{
		{"exact order", []string{"A", "B"}, true},
		{"reversed order", []string{"B", "A"}, true},
		{"subset", []string{"A"}, false},
		{"superset", []string{"A", "B", "C"}, false},
		{"disjoint", []string{"C"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := app.GradeAnswer(question, domain.MultipleAnswer(tc.values), 1, 1)
			if got.Correct != tc.correct {
				t.Fatalf("submitted %v: expected correct=%v, got %+v", tc.values, tc.correct, got)
			}
		})
	}
}

func TestGradeAnswerTrueFalseAndText(t *testing.T) {
	tf := domain.Question{ID: "q3", Type: domain.QuestionTrueFalse, CorrectAnswer: "true", Marks: 1}
	if got := app.GradeAnswer(tf, domain.SingleAnswer("true"), 1, 1); !got.Correct {
		t.Fatalf("expected true-false match, got %+v", got)
	}
	if got := app.GradeAnswer(tf, domain.SingleAnswer("false"), 1, 1); got.Correct {
		t.Fatalf("expected true-false mismatch, got %+v", got)
	}

	text := domain.Question{ID: "q4", Type: domain.QuestionText, CorrectAnswer: "photosynthesis", Marks: 1}
	if got := app.GradeAnswer(text, domain.SingleAnswer("photosynthesis"), 1, 1); !got.Correct {
		t.Fatalf("expected exact text match, got %+v", got)
	}
	if got := app.GradeAnswer(text, domain.SingleAnswer("Photosynthesis"), 1, 1); got.Correct {
		t.Fatalf("expected case-sensitive mismatch, got %+v", got)
	}
}

func TestGradeAnswerIsPure(t *testing.T) {
	question := msQuestion()
	answer := domain.MultipleAnswer([]string{"B", "A"})
	first := app.GradeAnswer(question, answer, 1, 1)
	for i := 0; i < 5; i++ {
		if got := app.GradeAnswer(question, answer, 1, 1); got != first {
			t.Fatalf("expected identical outcome on call %d, got %+v vs %+v", i, got, first)
		}
	}
}
