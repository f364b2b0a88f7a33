package safewatch

import (
	"context"

	"github.com/gabapcia/safewatch/internal/safetx"
)

// MaliciousDetector flags transactions that require immediate attention.
// When it reports true the event is sent as safetx.EventMalicious instead of
// the transition that was detected.
type MaliciousDetector interface {
	IsMalicious(ctx context.Context, chainPrefix, safe string, tx safetx.TxDetail[string]) (bool, error)
}
