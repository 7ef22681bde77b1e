package formsync

import "context"

// Dispatcher starts submissions for a form. Verbs are validated against the
// transport before anything changes on the form.
type Dispatcher struct {
	form *Form
}

// Get dispatches a get request.
func (d *Dispatcher) Get(ctx context.Context, url string, opts ...RequestOption) (*Submission, error) {
	return d.Call(ctx, "get", url, opts...)
}

// Post dispatches a post request.
func (d *Dispatcher) Post(ctx context.Context, url string, opts ...RequestOption) (*Submission, error) {
	return d.Call(ctx, "post", url, opts...)
}

// Put dispatches a put request.
func (d *Dispatcher) Put(ctx context.Context, url string, opts ...RequestOption) (*Submission, error) {
	return d.Call(ctx, "put", url, opts...)
}

// Patch dispatches a patch request.
func (d *Dispatcher) Patch(ctx context.Context, url string, opts ...RequestOption) (*Submission, error) {
	return d.Call(ctx, "patch", url, opts...)
}

// Delete dispatches a delete request.
func (d *Dispatcher) Delete(ctx context.Context, url string, opts ...RequestOption) (*Submission, error) {
	return d.Call(ctx, "delete", url, opts...)
}

// Call dispatches an arbitrary verb. Method matching is case-insensitive; a
// verb the transport does not list fails with a *MethodError.
func (d *Dispatcher) Call(ctx context.Context, method, url string, opts ...RequestOption) (*Submission, error) {
	return d.form.dispatch(ctx, normalizeMethod(method), url, opts)
}
