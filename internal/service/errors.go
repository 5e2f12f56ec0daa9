package service

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the services wraps exactly one
// of these, so callers can classify with errors.Is without string matching.
var (
	// ErrValidation marks malformed or missing caller input, detected
	// before any write.
	ErrValidation = errors.New("validation failed")

	// ErrPrecondition marks a rejected upsert precondition.
	ErrPrecondition = errors.New("precondition failed")

	// ErrConflict marks a duplicate association, such as assigning the
	// same user to a project twice.
	ErrConflict = errors.New("conflict")

	// ErrStorage marks any failure during the transactional write. The
	// enclosing transaction has been rolled back by the time it surfaces.
	ErrStorage = errors.New("storage failure")
)

// Precondition sentinels.
var (
	// ErrTypologyNotImported rejects any project upsert while the global
	// catalog is empty.
	ErrTypologyNotImported = fmt.Errorf("%w: typology not yet imported", ErrPrecondition)

	// ErrFilesLocked rejects bitext/metric uploads for a project that
	// already has reported issues.
	ErrFilesLocked = fmt.Errorf("%w: changing the bitext or metric files is not possible until all reported issues are removed", ErrPrecondition)

	// ErrNoWordCounts rejects scoring a project whose source or target
	// word count is zero, instead of propagating a non-finite score.
	ErrNoWordCounts = fmt.Errorf("%w: project has no scorable word counts", ErrPrecondition)
)

// ValidationError carries a caller-facing description of rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TypologyMismatchError reports a metric entry referencing an unknown or
// wrongly-parented catalog issue. The whole metric batch is rejected on the
// first mismatch.
type TypologyMismatchError struct {
	IssueID        string
	DeclaredParent string
	WantParent     string
	Unknown        bool
}

func (e *TypologyMismatchError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("issue type %q does not exist in the typology", e.IssueID)
	}
	return fmt.Sprintf("issue type %q does not have the parent issue type %q (declared %q)",
		e.IssueID, e.WantParent, e.DeclaredParent)
}

func (e *TypologyMismatchError) Unwrap() error { return ErrValidation }
