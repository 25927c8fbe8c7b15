package app

import (
	"mocktest-service/internal/domain"
)

// NextAttempt computes the 1-based attempt number from the count of prior
// results, rejecting the submission outright once the configured limit is
// used up. The returned number is a candidate only: the result store's
// uniqueness constraint is the source of truth under concurrent
// submissions.
func NextAttempt(existingAttempts, maxAttempts int) (int, error) {
	if existingAttempts >= maxAttempts {
		return 0, &domain.AttemptLimitError{Limit: maxAttempts, Used: existingAttempts}
	}
	return existingAttempts + 1, nil
}
