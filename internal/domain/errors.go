package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTestNotFound indicates the test reference does not resolve.
	ErrTestNotFound = errors.New("test not found")
	// ErrPackageNotFound indicates the package reference does not resolve.
	ErrPackageNotFound = errors.New("package not found")
	// ErrGroupNotFound indicates the group reference does not resolve.
	ErrGroupNotFound = errors.New("group not found")
	// ErrOrganizationNotFound indicates the organization reference does not
	// resolve.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrInvalidTest is returned when a test definition violates its
	// creation invariants.
	ErrInvalidTest = errors.New("invalid test definition")
	// ErrValidation is returned for malformed or missing request input,
	// before any grading or pricing work begins.
	ErrValidation = errors.New("validation failed")
	// ErrAttemptLimitExceeded is the business-rule failure for exhausted
	// attempts; match with errors.Is, inspect with errors.As on
	// *AttemptLimitError.
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	// ErrDuplicateAttempt is the uniqueness-violation backstop for
	// concurrent submissions; the caller may re-read the attempt count and
	// retry.
	ErrDuplicateAttempt = errors.New("duplicate attempt")
)

// AttemptLimitError reports the configured limit and current usage so
// clients can render a precise message.
type AttemptLimitError struct {
	Limit int
	Used  int
}

func (e *AttemptLimitError) Error() string {
	return fmt.Sprintf("attempt limit exceeded: %d of %d attempts used", e.Used, e.Limit)
}

func (e *AttemptLimitError) Unwrap() error { return ErrAttemptLimitExceeded }

// Ineligibility reasons returned by discount checks and claim validation.
// Fail-closed checks always name the specific failure rather than a generic
// one.
const (
	ReasonDiscountsDisabled = "eligibility discounts are disabled for this package"
	ReasonNoCandidates      = "no eligible group or organization discount"
	ReasonGroupNotFound     = "group not found"
	ReasonOrgNotFound       = "organization not found"
	ReasonNotGroupMember    = "user is not a member of the claimed group"
	ReasonGroupInactive     = "group is not active"
	ReasonGroupBelowMin     = "group is below its minimum member count"
	ReasonGroupExpired      = "group discount has expired"
	ReasonOrgNotVerified    = "organization is not verified"
	ReasonNotOrgMember      = "user is not a registered member of the organization"
)
