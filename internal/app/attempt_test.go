package app_test

import (
	"errors"
	"testing"

	"mocktest-service/internal/app"
	"mocktest-service/internal/domain"
)

func TestNextAttempt(t *testing.T) {
	tests := []struct {
		name     string
		used     int
		limit    int
		want     int
		rejected bool
	}{
		{"first attempt", 0, 3, 1, false},
		{"second attempt", 1, 3, 2, false},
		{"last attempt", 2, 3, 3, false},
		{"limit reached", 3, 3, 0, true},
		{"over limit", 5, 3, 0, true},
		{"single attempt used", 1, 1, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := app.NextAttempt(tc.used, tc.limit)
			if tc.rejected {
				if !errors.Is(err, domain.ErrAttemptLimitExceeded) {
					t.Fatalf("expected attempt limit error, got %v", err)
				}
				var limitErr *domain.AttemptLimitError
				if !errors.As(err, &limitErr) {
					t.Fatalf("expected *AttemptLimitError, got %T", err)
				}
				if limitErr.Limit != tc.limit || limitErr.Used != tc.used {
					t.Fatalf("expected limit=%d used=%d, got %+v", tc.limit, tc.used, limitErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected attempt %d, got %d", tc.want, got)
			}
		})
	}
}
