package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"mocktest-service/internal/domain"
)

// uniqueViolation is the SQLSTATE for unique-constraint violations.
const uniqueViolation = "23505"

// ResultStore persists results as JSONB rows. The unique index on
// (student_id, test_id, attempt_number) is the correctness backstop for
// concurrent submissions: the losing insert surfaces as
// domain.ErrDuplicateAttempt instead of silently duplicating or skipping an
// attempt number.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) CountByStudentAndTest(ctx context.Context, studentID, testID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM results WHERE student_id=$1 AND test_id=$2`,
		studentID, testID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return count, nil
}

func (s *ResultStore) Insert(ctx context.Context, result domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO results (id, student_id, test_id, attempt_number, data) VALUES ($1, $2, $3, $4, $5)`,
		result.ID, result.StudentID, result.TestID, result.AttemptNumber, data,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: attempt %d for student %s on test %s", domain.ErrDuplicateAttempt, result.AttemptNumber, result.StudentID, result.TestID)
		}
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultStore) ListByStudentAndTest(ctx context.Context, studentID, testID string) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM results WHERE student_id=$1 AND test_id=$2 ORDER BY attempt_number`,
		studentID, testID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var result domain.Result
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}
