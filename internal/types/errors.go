package types

import (
	"errors"
	"fmt"
)

var ErrPayloadExists = errors.New("raw payload already exists")

// StatusError reports a non-200 answer from a remote endpoint.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// MissingFieldError means a payload lacks a nested object the extractor needs.
// The payload is skipped; the stage carries on with the next one.
type MissingFieldError struct {
	Source  string
	Field   string
	Details map[string]interface{}
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %s (source: %s)", e.Field, e.Source)
}

func NewMissingFieldError(source, field string) *MissingFieldError {
	return &MissingFieldError{
		Source:  source,
		Field:   field,
		Details: make(map[string]interface{}),
	}
}

func (e *MissingFieldError) WithDetail(key string, value interface{}) *MissingFieldError {
	e.Details[key] = value
	return e
}

func IsMissingField(err error) bool {
	var target *MissingFieldError
	return errors.As(err, &target)
}

type CoercionError struct {
	Column string
	Value  interface{}
	Type   string
	Err    error
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot coerce %v to %s for column %s: %v", e.Value, e.Type, e.Column, e.Err)
	}
	return fmt.Sprintf("cannot coerce %v to %s for column %s", e.Value, e.Type, e.Column)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

func IsCoercion(err error) bool {
	var target *CoercionError
	return errors.As(err, &target)
}

// ExtractError means a fetched page did not carry the expected payload.
// Retrying the same URL will not change that, so callers do not retry.
type ExtractError struct {
	Source string
	Reason string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract payload from %s: %s", e.Source, e.Reason)
}

func IsExtract(err error) bool {
	var target *ExtractError
	return errors.As(err, &target)
}
