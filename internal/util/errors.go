package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNotWhitelisted      = errors.New("user is not whitelisted for this system")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrPaperNotFound       = errors.New("paper not found")
	ErrSectionNotFound     = errors.New("section not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrTemplateNotFound    = errors.New("test template not found")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrStateConflict       = errors.New("attempt is not in progress")
	ErrInsightUnavailable  = errors.New("performance insight temporarily unavailable")
)

// InsufficientPoolError reports that an eligible question pool cannot satisfy
// the requested draw. It distinguishes "no question data exists in scope" from
// "questions exist but none are currently valid": TotalInScope counts every
// question matching the filter, Eligible only those inside their validity
// window at the reference time.
type InsufficientPoolError struct {
	SectionID    uint   // offending template section, 0 for adaptive tiers
	Tier         string // difficulty tier, empty for standard sections
	Requested    int
	TotalInScope int
	Eligible     int
}

func (e *InsufficientPoolError) Error() string {
	where := fmt.Sprintf("template section %d", e.SectionID)
	if e.Tier != "" {
		where = fmt.Sprintf("difficulty tier %s", e.Tier)
	}
	if e.TotalInScope == 0 {
		return fmt.Sprintf("insufficient question pool for %s: no questions exist in scope (requested %d)", where, e.Requested)
	}
	return fmt.Sprintf("insufficient question pool for %s: requested %d, %d questions in scope but only %d currently valid",
		where, e.Requested, e.TotalInScope, e.Eligible)
}

// ValidationError rejects malformed input (out-of-range option index,
// negative time values, bad option shapes).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
