// Package keyedstore provides a shared, keyed store of fetched values with
// publish/subscribe notification and fetch deduplication.
//
// A Store is an explicit instance: create one per application (or per test)
// and pass it to every consumer that should share results. Entries are never
// evicted automatically.
//
// Each Entry carries a Status that acts as a cooperative ticket:
//
//	Idle -> Pending -> Complete
//
// The consumer that wins Claim (Idle -> Pending) performs exactly one fetch
// and publishes the result with Update or Fail. Every other consumer that
// observes Pending waits for a notification (Await) instead of fetching
// again. A new cycle for the same key only starts when a caller asks for it
// explicitly through Reclaim or Remove.
//
// Fetcher wraps those rules into a fetch-once consumer:
//
//	store := keyedstore.New[User]()
//	users := keyedstore.NewFetcher(store, func(ctx context.Context, key string) (User, error) {
//	    return api.LoadUser(ctx, key)
//	})
//	entry, err := users.Load(ctx, "/users/42")
package keyedstore
