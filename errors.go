package formsync

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidFieldName reports a malformed bracket path.
	ErrInvalidFieldName = errors.New("formsync: invalid field name")
	// ErrUnsupportedMethod reports a verb the transport does not accept.
	ErrUnsupportedMethod = errors.New("formsync: unsupported method")
	// ErrSubmitInProgress is returned when a submission is dispatched while
	// another one is still in flight.
	ErrSubmitInProgress = errors.New("formsync: submission already in progress")
	// ErrFormClosed is returned when dispatching on a closed form.
	ErrFormClosed = errors.New("formsync: form is closed")
	// ErrTransportRequired is returned when no Transport was configured.
	ErrTransportRequired = errors.New("formsync: transport is required")
)

// FieldNameError carries the offending field name.
type FieldNameError struct {
	Name   string
	Reason string
}

func (e *FieldNameError) Error() string {
	return fmt.Sprintf("formsync: invalid field name %q: %s", e.Name, e.Reason)
}

func (e *FieldNameError) Unwrap() error {
	return ErrInvalidFieldName
}

// MethodError reports a verb rejected by the dispatcher.
type MethodError struct {
	Method    string
	Supported []string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("formsync: unsupported method %q (supported: %s)", e.Method, strings.Join(e.Supported, ", "))
}

func (e *MethodError) Unwrap() error {
	return ErrUnsupportedMethod
}

// ResponseError is returned by transports when the server replied with a
// failure status. Errors holds the decoded field payload, if any.
type ResponseError struct {
	Status int
	Errors map[string]any
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("formsync: response status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("formsync: response status %d", e.Status)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// ValidationError is reported when a submission is rejected with field
// errors. Errors is the filtered ErrorMap stored on the form.
type ValidationError struct {
	Status int
	Errors ErrorMap
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("formsync: validation failed with status %d (%d fields)", e.Status, len(e.Errors))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError wraps every other submission failure.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("formsync: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
