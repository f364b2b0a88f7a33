package safetx

import "context"

// Index is a remote transaction-index service for one Safe.
//
// Implementations target a specific remote API shape and normalize its
// responses into the canonical model. Every call returns freshly built
// values; nothing is cached between calls.
type Index interface {
	// FetchAll pages through the complete transaction history. A failed page
	// stops paging; the summaries collected so far are returned and the
	// failure is logged, never returned.
	FetchAll(ctx context.Context) []TxSummary

	// FetchLatest fetches only the first page. On failure it logs and
	// returns an empty slice.
	FetchLatest(ctx context.Context) []TxSummary

	// FetchDetailed fetches and normalizes one transaction. Failures are
	// returned to the caller.
	FetchDetailed(ctx context.Context, safeTxHash string) (TxDetail[string], error)
}

// Notifier delivers lifecycle events to one notification channel.
type Notifier interface {
	// Send renders and delivers event. Delivery failures are logged by the
	// implementation and not returned; an error means the event could not be
	// rendered at all.
	Send(ctx context.Context, event Event) error
}
