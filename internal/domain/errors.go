package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function;
// the worker uses them to classify per-message failures.
var (
	ErrNotFound         = errors.New("not found")
	ErrMalformedMessage = errors.New("malformed request message")
	ErrClassification   = errors.New("request could not be classified")
	ErrQuery            = errors.New("query failed")
	ErrQueueUnavailable = errors.New("queue is unavailable, try again later")
	ErrInvalidRecipient = errors.New("recipient must be a valid email address")
)

// ClassificationError reports an unsupported request type or a missing or
// malformed required parameter. It is terminal for the message.
type ClassificationError struct {
	Field  string
	Reason string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Reason)
}

func (e *ClassificationError) Is(target error) bool {
	return target == ErrClassification
}

// QueryError wraps a failure from the query-answering layer.
type QueryError struct {
	Type RequestType
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Type, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}
