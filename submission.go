package formsync

import (
	"context"
	"sync"
)

// Submission is the handle for one dispatched request.
type Submission struct {
	id     string
	method string
	url    string

	done   chan struct{}
	once   sync.Once
	result Result
}

func newSubmission(id, method, url string) *Submission {
	return &Submission{id: id, method: method, url: url, done: make(chan struct{})}
}

// ID is the unique submission id used in logs and activity events.
func (s *Submission) ID() string { return s.id }

// Method is the normalised verb.
func (s *Submission) Method() string { return s.method }

// URL is the request target.
func (s *Submission) URL() string { return s.url }

// Done is closed once the submission has settled and the form is idle again.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Wait blocks until the submission settles or ctx ends. Submission failures
// are reported in Result.Err; the error return only reports ctx expiry.
func (s *Submission) Wait(ctx context.Context) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-s.done:
		return s.result, nil
	case <-ctx.Done():
		return Result{SubmissionID: s.id}, ctx.Err()
	}
}

// Result returns the outcome without blocking.
func (s *Submission) Result() (Result, bool) {
	select {
	case <-s.done:
		return s.result, true
	default:
		return Result{}, false
	}
}

func (s *Submission) complete(result Result) {
	s.once.Do(func() {
		s.result = result
		close(s.done)
	})
}
