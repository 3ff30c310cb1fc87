package loanappl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("loan application not found")
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("actor is not allowed to perform this action")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReadOnlyField     = errors.New("field is read-only")
	ErrUnknownField      = errors.New("unknown field")
	ErrNotSubmitted      = errors.New("submit the loan application first")
	ErrCancelled         = errors.New("loan application is already cancelled")
	ErrLoanExists        = errors.New("loan application already has a loan attached")
	ErrLoanNotFound      = errors.New("loan not found")
)

type FailureKind string

const (
	FailureMissing           FailureKind = "missing"
	FailureDisabledReference FailureKind = "disabled_reference"
	FailureInvalid           FailureKind = "invalid"
)

// Failure is a single user-facing reason a save or change is blocked.
type Failure struct {
	Field   string      `json:"field"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// ValidationError blocks the save and carries every failure found.
type ValidationError struct {
	Failures []Failure
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DisabledReferenceError is raised when a selected reference entity is disabled.
type DisabledReferenceError struct {
	Doctype string
	Name    string
}

func (e *DisabledReferenceError) Error() string {
	return fmt.Sprintf("%s: %s is disabled.", e.Doctype, e.Name)
}

// LookupFailure is non-fatal: the enriched field stays unset and a warning is shown.
type LookupFailure struct {
	What string
	Err  error
}

func (e *LookupFailure) Error() string {
	return fmt.Sprintf("There was a problem while loading the %s!", e.What)
}

func (e *LookupFailure) Unwrap() error { return e.Err }
