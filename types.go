package formsync

import (
	"context"
	"strings"
)

// FieldData holds form values keyed by top-level field name. Leaves are
// primitives, string lists, or nested maps and lists built by path writes.
type FieldData = map[string]any

// ErrorMap maps a field name to its messages. A missing key means no error.
type ErrorMap = map[string][]string

// ValidationStatus is the response status treated as a validation failure by
// DefaultValidationPredicate.
const ValidationStatus = 422

// State is the request lifecycle state of a Form.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateValidationFailed
	StateTransportFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateValidationFailed:
		return "validation_failed"
	case StateTransportFailed:
		return "transport_failed"
	default:
		return "unknown"
	}
}

// Request is what a Transport receives for one submission.
type Request struct {
	Method string
	URL    string
	Data   FieldData
	Config map[string]any
}

// Response is a successful transport reply.
type Response struct {
	Status int
	Data   any
}

// Transport performs requests on behalf of a form. Methods lists the lower
// case verbs it accepts; dispatching any other verb fails before Do is
// called. Failures that carry a server reply should be returned as
// *ResponseError so validation payloads can be recognised.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
	Methods() []string
}

// TransportFunc adapts a function to Transport. It accepts the standard
// verbs.
type TransportFunc func(ctx context.Context, req Request) (Response, error)

// Do implements Transport.
func (fn TransportFunc) Do(ctx context.Context, req Request) (Response, error) {
	return fn(ctx, req)
}

// Methods implements Transport.
func (fn TransportFunc) Methods() []string {
	return StandardMethods()
}

// StandardMethods returns the verbs every HTTP-like transport supports.
func StandardMethods() []string {
	return []string{"get", "post", "put", "patch", "delete"}
}

func normalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}

func supportsMethod(methods []string, method string) bool {
	for _, candidate := range methods {
		if normalizeMethod(candidate) == method {
			return true
		}
	}
	return false
}

// Finish is passed to Callbacks.OnFinish once a submission has settled with
// either a success or a validation failure.
type Finish struct {
	Response      *Response
	Data          FieldData
	Errors        ErrorMap
	WasSuccessful bool
	HasErrors     bool
}

// Callbacks observe a submission. All are optional and run outside the form
// lock, in the order OnStart, then OnSuccess and OnFinish on success, or
// OnFinish and OnError on validation failure, or only OnError otherwise.
type Callbacks struct {
	OnStart   func()
	OnSuccess func(Response)
	OnError   func(error)
	OnFinish  func(Finish)
}

func (c Callbacks) merge(override Callbacks) Callbacks {
	if override.OnStart != nil {
		c.OnStart = override.OnStart
	}
	if override.OnSuccess != nil {
		c.OnSuccess = override.OnSuccess
	}
	if override.OnError != nil {
		c.OnError = override.OnError
	}
	if override.OnFinish != nil {
		c.OnFinish = override.OnFinish
	}
	return c
}

// Result reports how a submission settled. Err is a *ValidationError or a
// *TransportError for failed submissions and nil on success.
type Result struct {
	SubmissionID string
	State        State
	Response     *Response
	Errors       ErrorMap
	Err          error
}

// ValidationPredicate decides whether a failed response carries field
// errors.
type ValidationPredicate func(status int) bool

// DefaultValidationPredicate matches ValidationStatus.
func DefaultValidationPredicate(status int) bool {
	return status == ValidationStatus
}

// TransformFunc rewrites the submitted payload. It receives a copy of the
// form data. A non-nil error fails the submission before the transport runs.
type TransformFunc func(FieldData) (FieldData, error)
