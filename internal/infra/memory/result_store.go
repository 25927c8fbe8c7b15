package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mocktest-service/internal/domain"
)

// ResultStore keeps results in memory. It enforces the same uniqueness
// guarantee as the Postgres store: at most one result per (student, test,
// attempt number), checked and inserted under one lock.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string][]domain.Result)}
}

func (s *ResultStore) CountByStudentAndTest(_ context.Context, studentID, testID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results[key(studentID, testID)]), nil
}

func (s *ResultStore) Insert(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(result.StudentID, result.TestID)
	for _, existing := range s.results[k] {
		if existing.AttemptNumber == result.AttemptNumber {
			return fmt.Errorf("%w: attempt %d for student %s on test %s", domain.ErrDuplicateAttempt, result.AttemptNumber, result.StudentID, result.TestID)
		}
	}
	s.results[k] = append(s.results[k], result)
	return nil
}

func (s *ResultStore) ListByStudentAndTest(_ context.Context, studentID, testID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.results[key(studentID, testID)]
	out := make([]domain.Result, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool {
		return out[i].AttemptNumber < out[j].AttemptNumber
	})
	return out, nil
}

func key(studentID, testID string) string {
	return studentID + "|" + testID
}
