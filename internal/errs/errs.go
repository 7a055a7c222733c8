// Package errs holds the error taxonomy shared by the order feed and
// redemption flows. Controllers convert every collaborator failure into one
// of these before handing it to a caller.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError rejects input locally, before any network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// PreconditionError means the caller must resolve something out-of-band
// (e.g. pick a store) before retrying.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

var (
	// ErrEmptyCode is returned for empty or whitespace-only redemption codes.
	ErrEmptyCode = &ValidationError{Reason: "empty redemption code"}

	// ErrNoStoreSelected is returned when no active store has been picked yet.
	ErrNoStoreSelected = &PreconditionError{Reason: "no store selected"}

	// ErrNotFoundOrExpired means the submitted code does not correspond to a
	// redeemable order. Terminal for that code.
	ErrNotFoundOrExpired = errors.New("code not found or expired")

	// ErrStaleResponse signals that a response was ignored because its
	// request context was no longer current. Never user-visible.
	ErrStaleResponse = errors.New("stale response discarded")
)

// TransportError is a network or server failure. Message carries the
// human-readable text to surface verbatim; Sent marks that the request may
// have reached the server, so the application-level outcome is unknown.
type TransportError struct {
	Op      string
	Status  int
	Message string
	Sent    bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": transport failure"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage is what screens show for an error without leaking internals.
func UserMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason
	}
	var pErr *PreconditionError
	if errors.As(err, &pErr) {
		return pErr.Reason
	}
	if errors.Is(err, ErrNotFoundOrExpired) {
		return "code not found or expired"
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		if tErr.Message != "" {
			return tErr.Message
		}
		if tErr.Sent {
			return "request outcome unknown, please check the order status"
		}
		return "connection failed, please try again"
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
