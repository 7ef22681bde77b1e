package formsync

import (
	"context"

	"github.com/goliatone/go-formsync/pkg/keyedstore"
)

// NewFetcher builds a fetch-once consumer over store. Keys are URLs loaded
// with a get request through transport; concurrent loads of one URL share a
// single request. Failures are recorded on the entry as *TransportError.
func NewFetcher(store *keyedstore.Store[any], transport Transport, opts ...keyedstore.FetcherOption[any]) (*keyedstore.Fetcher[any], error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}
	if supported := transport.Methods(); !supportsMethod(supported, "get") {
		return nil, &MethodError{Method: "get", Supported: supported}
	}
	fetch := func(ctx context.Context, url string) (any, error) {
		response, err := transport.Do(ctx, Request{Method: "get", URL: url})
		if err != nil {
			return nil, &TransportError{Method: "get", URL: url, Err: err}
		}
		return response.Data, nil
	}
	return keyedstore.NewFetcher(store, fetch, opts...), nil
}
