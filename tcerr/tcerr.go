// Package tcerr is the engine's error taxonomy: every error the store,
// model validation, and generation pipeline produce carries a Kind so
// callers can discriminate "not found" from "bad input" from "conflict"
// without string-matching messages.
package tcerr

import (
	"errors"
	"fmt"
)

// Kind discriminates the category of failure. Mirrors the status-code
// buckets a request layer would map these onto (404, 400, 409, 500) without
// this package knowing anything about HTTP.
type Kind string

const (
	NotFound             Kind = "not_found"
	InvariantViolation   Kind = "invariant_violation"
	GenerationFailure    Kind = "generation_failure"
	StoreConflict        Kind = "store_conflict"
	SerializationFailure Kind = "serialization_failure"
)

// Error is a Kind-tagged error, optionally naming the offending field and
// the constraint it violated, and optionally wrapping an underlying cause.
type Error struct {
	Kind       Kind
	Field      string
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Constraint != "":
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Field, e.Constraint, e.Err)
		}
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Constraint)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Field builds an InvariantViolation-style error naming the field and the
// constraint it failed, for record validation.
func Field(kind Kind, field, constraint string) *Error {
	return &Error{Kind: kind, Field: field, Constraint: constraint}
}

// New builds a bare Kind-tagged error with no field metadata, for
// conditions like "not found" that aren't about a single field.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Err: errors.New(message)}
}

// Wrap tags an existing error with a Kind, preserving it as the cause.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Is reports whether err (or anything it wraps) is a *Error of the given
// Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
