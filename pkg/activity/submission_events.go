package activity

import (
	"strings"
	"time"
)

// SubmissionInput carries the fields shared by every submission event.
type SubmissionInput struct {
	FormID       string
	SubmissionID string
	Method       string
	URL          string
	ActorID      string
	TenantID     string
	Channel      string
	Metadata     map[string]any
	OccurredAt   time.Time
}

// Outcome describes how a submission settled.
type Outcome struct {
	Status     int
	ErrorCount int
	Duration   time.Duration
	Err        error
}

// BuildSubmitStartedEvent describes a submission entering flight.
func BuildSubmitStartedEvent(input SubmissionInput) Event {
	return buildSubmissionEvent(VerbSubmitStarted, input, Outcome{})
}

// BuildSubmitSucceededEvent describes a successful submission.
func BuildSubmitSucceededEvent(input SubmissionInput, outcome Outcome) Event {
	return buildSubmissionEvent(VerbSubmitSucceeded, input, outcome)
}

// BuildSubmitValidationFailedEvent describes a submission rejected with
// field errors. ErrorCount records how many fields failed.
func BuildSubmitValidationFailedEvent(input SubmissionInput, outcome Outcome) Event {
	event := buildSubmissionEvent(VerbSubmitValidationFailed, input, outcome)
	event.Metadata = ensureMetadata(event.Metadata)
	event.Metadata["error_count"] = outcome.ErrorCount
	return event
}

// BuildSubmitFailedEvent describes a submission that failed without field
// errors.
func BuildSubmitFailedEvent(input SubmissionInput, outcome Outcome) Event {
	return buildSubmissionEvent(VerbSubmitFailed, input, outcome)
}

func buildSubmissionEvent(verb string, input SubmissionInput, outcome Outcome) Event {
	metadata := cloneMap(input.Metadata)
	if outcome.Duration > 0 {
		metadata = ensureMetadata(metadata)
		metadata["duration_ms"] = outcome.Duration.Milliseconds()
	}
	if outcome.Err != nil {
		metadata = ensureMetadata(metadata)
		metadata["error"] = outcome.Err.Error()
	}
	return Event{
		Verb:         verb,
		FormID:       strings.TrimSpace(input.FormID),
		SubmissionID: strings.TrimSpace(input.SubmissionID),
		Method:       strings.ToLower(strings.TrimSpace(input.Method)),
		URL:          strings.TrimSpace(input.URL),
		Status:       outcome.Status,
		ActorID:      strings.TrimSpace(input.ActorID),
		TenantID:     strings.TrimSpace(input.TenantID),
		Channel:      strings.TrimSpace(input.Channel),
		Metadata:     metadata,
		OccurredAt:   input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
