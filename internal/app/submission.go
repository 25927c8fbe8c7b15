package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mocktest-service/internal/domain"
)

// TestRepository loads test definitions with questions populated (from
// cache/backing store).
type TestRepository interface {
	GetTest(ctx context.Context, testID string) (domain.MockTest, error)
}

// ResultStore persists immutable results and answers attempt-count queries.
// Insert must reject a second result for the same (student, test, attempt)
// with domain.ErrDuplicateAttempt.
type ResultStore interface {
	CountByStudentAndTest(ctx context.Context, studentID, testID string) (int, error)
	Insert(ctx context.Context, result domain.Result) error
	ListByStudentAndTest(ctx context.Context, studentID, testID string) ([]domain.Result, error)
}

// SubmissionService materializes graded results from raw submissions.
type SubmissionService struct {
	tests   TestRepository
	results ResultStore
	now     func() time.Time
}

func NewSubmissionService(tests TestRepository, results ResultStore) *SubmissionService {
	return &SubmissionService{tests: tests, results: results, now: time.Now}
}

// NewSubmissionServiceWithClock is test-only for deterministic timestamps.
func NewSubmissionServiceWithClock(tests TestRepository, results ResultStore, now func() time.Time) *SubmissionService {
	return &SubmissionService{tests: tests, results: results, now: now}
}

// Submit grades a test submission and persists exactly one Result for the
// next attempt number. Returns domain.ErrAttemptLimitExceeded when the
// student has used up their attempts and domain.ErrDuplicateAttempt when a
// concurrent submission won the attempt number; the latter is safe to
// retry after re-reading the attempt count.
func (s *SubmissionService) Submit(ctx context.Context, testID, studentID string, answers map[string]domain.SubmittedAnswer, timeTakenSeconds int, autoSubmit bool) (domain.Result, error) {
	if testID == "" || studentID == "" {
		return domain.Result{}, fmt.Errorf("%w: testID and studentID are required", domain.ErrValidation)
	}
	if timeTakenSeconds < 0 {
		return domain.Result{}, fmt.Errorf("%w: timeTaken must be non-negative", domain.ErrValidation)
	}

	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return domain.Result{}, err
	}

	used, err := s.results.CountByStudentAndTest(ctx, studentID, testID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("count attempts: %w", err)
	}
	attempt, err := NextAttempt(used, test.NumberOfAttempts)
	if err != nil {
		return domain.Result{}, err
	}

	draft := ScoreTest(test, answers)

	now := s.now()
	submissionType := domain.SubmissionManual
	if autoSubmit {
		submissionType = domain.SubmissionAuto
	}

	result := domain.Result{
		ID:                  uuid.NewString(),
		StudentID:           studentID,
		TestID:              testID,
		AttemptNumber:       attempt,
		StartedAt:           now.Add(-time.Duration(timeTakenSeconds) * time.Second),
		CompletedAt:         now,
		Score:               draft.Score,
		TotalMarks:          test.TotalMarks,
		Percentage:          draft.Percentage,
		Passed:              draft.Passed,
		CorrectCount:        draft.CorrectCount,
		IncorrectCount:      draft.IncorrectCount,
		UnansweredCount:     draft.UnansweredCount,
		SubmissionType:      submissionType,
		Answers:             draft.Answers,
		SubjectBreakdown:    draft.SubjectBreakdown,
		DifficultyBreakdown: draft.DifficultyBreakdown,
		CategoryBreakdown:   draft.CategoryBreakdown,
	}

	if err := s.results.Insert(ctx, result); err != nil {
		return domain.Result{}, err
	}
	return result, nil
}

// Results returns the student's attempt history for a test, ordered by
// attempt number.
func (s *SubmissionService) Results(ctx context.Context, testID, studentID string) ([]domain.Result, error) {
	if testID == "" || studentID == "" {
		return nil, fmt.Errorf("%w: testID and studentID are required", domain.ErrValidation)
	}
	if _, err := s.tests.GetTest(ctx, testID); err != nil {
		return nil, err
	}
	return s.results.ListByStudentAndTest(ctx, studentID, testID)
}
