package formsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formsync/layering"
	"github.com/goliatone/go-formsync/pkg/activity"
	"github.com/goliatone/go-formsync/pkg/logging"
)

// dispatch validates the request, moves the form into Submitting and runs
// the transport on its own goroutine.
func (f *Form) dispatch(ctx context.Context, method, url string, opts []RequestOption) (*Submission, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rc := applyRequestOptions(f.cfg.callbacks, opts)

	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return nil, ErrFormClosed
	case f.cfg.transport == nil:
		f.mu.Unlock()
		return nil, ErrTransportRequired
	}
	if supported := f.cfg.transport.Methods(); !supportsMethod(supported, method) {
		f.mu.Unlock()
		return nil, &MethodError{Method: method, Supported: supported}
	}
	if f.processing {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	f.errors.ClearErrors()
	f.hasErrors = false
	f.wasSuccessful = false
	f.processing = true
	f.state = StateSubmitting
	data := f.fields.Data()
	transform := f.transform
	f.mu.Unlock()

	submission := newSubmission(uuid.NewString(), method, url)
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(f.root, cancel)

	if rc.callbacks.OnStart != nil {
		rc.callbacks.OnStart()
	}
	f.emit(ctx, activity.BuildSubmitStartedEvent(f.eventInput(submission)))

	go func() {
		defer stop()
		defer cancel()
		f.run(reqCtx, submission, data, transform, rc)
	}()
	return submission, nil
}

func (f *Form) run(ctx context.Context, submission *Submission, data FieldData, transform TransformFunc, rc requestConfig) {
	started := time.Now()
	result := Result{SubmissionID: submission.ID()}

	response, err := f.perform(ctx, submission, data, transform, rc)
	switch {
	case err == nil:
		result = f.succeed(submission, data, response, rc.callbacks)
	default:
		var respErr *ResponseError
		if errors.As(err, &respErr) && f.cfg.validation(respErr.Status) {
			result = f.rejectWithErrors(submission, data, respErr, rc.callbacks)
		} else {
			result = f.fail(submission, err, rc.callbacks)
		}
	}

	duration := time.Since(started)
	f.emit(ctx, settledEvent(result, f.eventInput(submission), duration))
	f.cfg.logger.Log(logging.Event{
		Component: "request",
		Op:        "submit",
		Key:       submission.ID(),
		Duration:  duration,
		Err:       result.Err,
		Fields: map[string]any{
			"form":   f.id,
			"method": submission.Method(),
			"url":    submission.URL(),
			"state":  result.State.String(),
		},
	})

	f.mu.Lock()
	f.processing = false
	f.state = StateIdle
	f.mu.Unlock()

	submission.complete(result)
}

func (f *Form) perform(ctx context.Context, submission *Submission, data FieldData, transform TransformFunc, rc requestConfig) (Response, error) {
	payload := layering.CloneMap(data)
	if transform != nil {
		transformed, err := transform(payload)
		if err != nil {
			return Response{}, err
		}
		payload = transformed
	}
	return f.cfg.transport.Do(ctx, Request{
		Method: submission.Method(),
		URL:    submission.URL(),
		Data:   payload,
		Config: rc.config,
	})
}

func (f *Form) succeed(submission *Submission, data FieldData, response Response, callbacks Callbacks) Result {
	f.mu.Lock()
	f.wasSuccessful = true
	f.state = StateSucceeded
	f.fields.replaceDefaults(data)
	w := f.takeDefaultsLocked()
	finish := Finish{
		Response:      &response,
		Data:          layering.CloneMap(data),
		Errors:        f.errors.Errors(),
		WasSuccessful: true,
		HasErrors:     f.hasErrors,
	}
	f.mu.Unlock()
	f.flushDefaults(w)

	if callbacks.OnSuccess != nil {
		callbacks.OnSuccess(response)
	}
	if callbacks.OnFinish != nil {
		callbacks.OnFinish(finish)
	}
	return Result{SubmissionID: submission.ID(), State: StateSucceeded, Response: &response, Errors: ErrorMap{}}
}

func (f *Form) rejectWithErrors(submission *Submission, data FieldData, respErr *ResponseError, callbacks Callbacks) Result {
	filtered := FilterValidationPayload(respErr.Errors)

	f.mu.Lock()
	if len(filtered) > 0 {
		f.errors.SetErrors(filtered)
	}
	f.hasErrors = len(filtered) > 0
	f.state = StateValidationFailed
	f.mu.Unlock()

	validationErr := &ValidationError{Status: respErr.Status, Errors: copyErrorMap(filtered), Err: respErr}
	if callbacks.OnFinish != nil {
		callbacks.OnFinish(Finish{
			Data:      layering.CloneMap(data),
			Errors:    copyErrorMap(filtered),
			HasErrors: len(filtered) > 0,
		})
	}
	if callbacks.OnError != nil {
		callbacks.OnError(validationErr)
	}
	return Result{SubmissionID: submission.ID(), State: StateValidationFailed, Errors: copyErrorMap(filtered), Err: validationErr}
}

func (f *Form) fail(submission *Submission, err error, callbacks Callbacks) Result {
	f.mu.Lock()
	f.hasErrors = true
	f.state = StateTransportFailed
	f.mu.Unlock()

	transportErr := &TransportError{Method: submission.Method(), URL: submission.URL(), Err: err}
	if callbacks.OnError != nil {
		callbacks.OnError(transportErr)
	}
	return Result{SubmissionID: submission.ID(), State: StateTransportFailed, Errors: ErrorMap{}, Err: transportErr}
}

func (f *Form) eventInput(submission *Submission) activity.SubmissionInput {
	return activity.SubmissionInput{
		FormID:       f.id,
		SubmissionID: submission.ID(),
		Method:       submission.Method(),
		URL:          submission.URL(),
	}
}

func settledEvent(result Result, input activity.SubmissionInput, duration time.Duration) activity.Event {
	outcome := activity.Outcome{Duration: duration}
	if result.Response != nil {
		outcome.Status = result.Response.Status
	}
	switch result.State {
	case StateSucceeded:
		return activity.BuildSubmitSucceededEvent(input, outcome)
	case StateValidationFailed:
		var validationErr *ValidationError
		if errors.As(result.Err, &validationErr) {
			outcome.Status = validationErr.Status
		}
		outcome.ErrorCount = len(result.Errors)
		return activity.BuildSubmitValidationFailedEvent(input, outcome)
	default:
		var respErr *ResponseError
		if errors.As(result.Err, &respErr) {
			outcome.Status = respErr.Status
		}
		outcome.Err = result.Err
		return activity.BuildSubmitFailedEvent(input, outcome)
	}
}

// emit forwards to the activity emitter. Hook failures are logged and never
// change the submission outcome.
func (f *Form) emit(ctx context.Context, event activity.Event) {
	if !f.cfg.emitter.Enabled() {
		return
	}
	if err := f.cfg.emitter.Emit(context.WithoutCancel(ctx), event); err != nil {
		f.cfg.logger.Log(logging.Event{
			Component: "activity",
			Op:        "emit",
			Key:       event.Verb,
			Err:       err,
			Fields:    map[string]any{"form": f.id, "submission": event.SubmissionID},
		})
	}
}
