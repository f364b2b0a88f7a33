package safewatch

import "github.com/gabapcia/safewatch/internal/safetx"

// classify compares the current summary of a transaction with the one stored
// on the previous poll and returns the lifecycle transition, if any.
//
// Executed transactions are final: nothing is reported for them afterwards.
func classify(prev safetx.TxSummary, seen bool, cur safetx.TxSummary) (safetx.EventType, bool) {
	switch {
	case !seen && cur.IsExecuted:
		return safetx.EventExecuted, true
	case !seen:
		return safetx.EventCreated, true
	case prev.IsExecuted:
		return "", false
	case cur.IsExecuted:
		return safetx.EventExecuted, true
	case cur.Confirmations != prev.Confirmations, cur.ConfirmationsRequired != prev.ConfirmationsRequired:
		return safetx.EventUpdated, true
	}
	return "", false
}
