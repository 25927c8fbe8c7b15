package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mocktest-service/internal/app"
	"mocktest-service/internal/domain"
	"mocktest-service/internal/infra/memory"
)

func newSubmissionService(now func() time.Time) (*app.SubmissionService, *memory.ResultStore) {
	results := memory.NewResultStore()
	tests := memory.NewTestRepository(memory.NewStaticTestLoader(map[string]domain.MockTest{
		"test-1": submissionTest(),
	}), 5*time.Minute)
	return app.NewSubmissionServiceWithClock(tests, results, now), results
}

func submissionTest() domain.MockTest {
	return domain.MockTest{
		ID: "test-1",
		Questions: []domain.Question{
			{
				ID:   "q1",
				Type: domain.QuestionMultipleChoice,
				Options: []domain.Option{
					{Text: "3", Correct: false},
					{Text: "4", Correct: true},
				},
				Marks: 2,
			},
			{ID: "q2", Type: domain.QuestionTrueFalse, CorrectAnswer: "true", Marks: 3},
		},
		NumberOfQuestions: 2,
		MarksPerQuestion:  2.5,
		TotalMarks:        5,
		PassingMarks:      3,
		NegativeMarking:   1,
		NumberOfAttempts:  3,
	}
}

func scenarioAnswers() map[string]domain.SubmittedAnswer {
	return map[string]domain.SubmittedAnswer{
		"q1": {QuestionID: "q1", Answer: domain.SingleAnswer("4"), TimeSpentSeconds: 40},
		"q2": {QuestionID: "q2", Answer: domain.SingleAnswer("false"), TimeSpentSeconds: 50},
	}
}

func TestSubmitMaterializesResult(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	service, _ := newSubmissionService(func() time.Time { return fixed })

	result, err := service.Submit(ctx, "test-1", "student-1", scenarioAnswers(), 90, false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.AttemptNumber != 1 {
		t.Fatalf("expected attempt 1, got %d", result.AttemptNumber)
	}
	if result.Score != 1 || result.Percentage != 20 || result.Passed {
		t.Fatalf("unexpected grading: score=%v pct=%v passed=%v", result.Score, result.Percentage, result.Passed)
	}
	if result.CompletedAt != fixed {
		t.Fatalf("expected end time %v, got %v", fixed, result.CompletedAt)
	}
	if want := fixed.Add(-90 * time.Second); result.StartedAt != want {
		t.Fatalf("expected start time %v, got %v", want, result.StartedAt)
	}
	if result.SubmissionType != domain.SubmissionManual {
		t.Fatalf("expected manual submission, got %s", result.SubmissionType)
	}
	if result.ID == "" {
		t.Fatalf("expected a generated result id")
	}
}

func TestSubmitAutoSubmitType(t *testing.T) {
	ctx := context.Background()
	service, _ := newSubmissionService(time.Now)

	result, err := service.Submit(ctx, "test-1", "student-1", nil, 0, true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.SubmissionType != domain.SubmissionAuto {
		t.Fatalf("expected auto submission, got %s", result.SubmissionType)
	}
	if result.UnansweredCount != 2 {
		t.Fatalf("expected all questions unanswered, got %d", result.UnansweredCount)
	}
}

func TestSubmitAttemptNumbering(t *testing.T) {
	ctx := context.Background()
	service, _ := newSubmissionService(time.Now)

	for want := 1; want <= 3; want++ {
		result, err := service.Submit(ctx, "test-1", "student-1", scenarioAnswers(), 60, false)
		if err != nil {
			t.Fatalf("submit %d: %v", want, err)
		}
		if result.AttemptNumber != want {
			t.Fatalf("expected attempt %d, got %d", want, result.AttemptNumber)
		}
	}

	_, err := service.Submit(ctx, "test-1", "student-1", scenarioAnswers(), 60, false)
	if !errors.Is(err, domain.ErrAttemptLimitExceeded) {
		t.Fatalf("expected attempt limit error, got %v", err)
	}
	var limitErr *domain.AttemptLimitError
	if !errors.As(err, &limitErr) || limitErr.Limit != 3 || limitErr.Used != 3 {
		t.Fatalf("expected limit 3 used 3, got %v", err)
	}
}

func TestSubmitUnknownTest(t *testing.T) {
	service, _ := newSubmissionService(time.Now)
	_, err := service.Submit(context.Background(), "missing", "student-1", nil, 0, false)
	if !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}

// staleCountStore simulates two racing submissions reading the same
// attempt-count snapshot, so both compute the same attempt number and the
// store's uniqueness check must reject the loser.
type staleCountStore struct {
	*memory.ResultStore
	count int
}

func (s *staleCountStore) CountByStudentAndTest(context.Context, string, string) (int, error) {
	return s.count, nil
}

func TestSubmitConcurrentDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	store := &staleCountStore{ResultStore: memory.NewResultStore()}
	tests := memory.NewTestRepository(memory.NewStaticTestLoader(map[string]domain.MockTest{
		"test-1": submissionTest(),
	}), 5*time.Minute)
	service := app.NewSubmissionService(tests, store)

	first, err := service.Submit(ctx, "test-1", "student-1", scenarioAnswers(), 60, false)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if first.AttemptNumber != 1 {
		t.Fatalf("expected attempt 1, got %d", first.AttemptNumber)
	}

	_, err = service.Submit(ctx, "test-1", "student-1", scenarioAnswers(), 60, false)
	if !errors.Is(err, domain.ErrDuplicateAttempt) {
		t.Fatalf("expected ErrDuplicateAttempt for the losing submission, got %v", err)
	}

	stored, err := store.ResultStore.ListByStudentAndTest(ctx, "student-1", "test-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected exactly one persisted result, got %d", len(stored))
	}
}

func TestResultsHistory(t *testing.T) {
	ctx := context.Background()
	service, _ := newSubmissionService(time.Now)

	if _, err := service.Submit(ctx, "test-1", "student-1", scenarioAnswers(), 60, false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := service.Submit(ctx, "test-1", "student-1", nil, 10, true); err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	history, err := service.Results(ctx, "test-1", "student-1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(history) != 2 || history[0].AttemptNumber != 1 || history[1].AttemptNumber != 2 {
		t.Fatalf("unexpected history %+v", history)
	}
}
