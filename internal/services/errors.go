package services

import (
	"errors"
	"fmt"
)

// Registration and profile errors.
var (
	ErrUsernameExists = errors.New("username already taken")
	ErrMissingFields  = errors.New("at least one of email or phone is required")
	ErrBadEmail       = errors.New("invalid email address")
	ErrBadPhone       = errors.New("invalid phone number")
)

// Identity and session errors.
var (
	ErrNoSuchUser         = errors.New("user does not exist")
	ErrBadCredentials     = errors.New("invalid credentials")
	ErrNoTokenInUser      = errors.New("no auth token supplied")
	ErrTokenNotInDatabase = errors.New("auth token not recognized")
	ErrTokenExpired       = errors.New("auth token expired")
	ErrNotAuthorized      = errors.New("not authorized to act on this resource")
)

// Answer lifecycle errors.
var (
	ErrBadAnswerFormat = errors.New("answer content does not match the task kind")
	ErrAlreadySolved   = errors.New("answer already has content")
)

// VerificationError wraps a grading failure so callers can tell an
// unreachable grader apart from a wrong answer.
type VerificationError struct {
	AnswerID string
	Err      error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification of answer %s failed: %v", e.AnswerID, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
