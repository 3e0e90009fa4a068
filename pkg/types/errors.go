// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying adapter failures. Adapters wrap these so the
// aggregator can distinguish a valid empty result from a source that broke.
var (
	// ErrNotFound means the provider answered and the requested entity
	// does not exist. It is a valid outcome, not a source failure.
	ErrNotFound = errors.New("not found")

	// ErrSourceFailure means a network error, timeout, or non-2xx status
	// kept the provider from answering. The aggregator treats the source
	// as having contributed nothing.
	ErrSourceFailure = errors.New("source failure")

	// ErrMalformedPayload means the provider answered but the payload
	// could not be parsed. Fatal to the one request, never to a batch.
	ErrMalformedPayload = errors.New("malformed payload")
)

// NotFoundError reports a missing entity with enough context for a
// caller-visible message.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns ErrNotFound for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// SourceError wraps a transient failure with the source and operation that
// produced it. StatusCode is 0 for network-level failures.
type SourceError struct {
	Source     string
	Op         string
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP %d", e.Source, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

// Unwrap returns ErrSourceFailure so errors.Is(err, ErrSourceFailure)
// holds for every wrapped transient failure.
func (e *SourceError) Unwrap() error {
	return ErrSourceFailure
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewSourceError builds a SourceError.
func NewSourceError(source, op string, statusCode int, err error) *SourceError {
	return &SourceError{Source: source, Op: op, StatusCode: statusCode, Err: err}
}

// IsNotFound reports whether err represents a valid missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSourceFailure reports whether err represents a transient source failure.
func IsSourceFailure(err error) bool {
	return errors.Is(err, ErrSourceFailure)
}
