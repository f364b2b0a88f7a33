package safewatch

import (
	"testing"

	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	pending := safetx.TxSummary{SafeTxHash: "0x1", Nonce: 1, Confirmations: 1, ConfirmationsRequired: 2}
	signed := safetx.TxSummary{SafeTxHash: "0x1", Nonce: 1, Confirmations: 2, ConfirmationsRequired: 2}
	executed := safetx.TxSummary{SafeTxHash: "0x1", Nonce: 1, Confirmations: 2, ConfirmationsRequired: 2, IsExecuted: true}
	raisedThreshold := safetx.TxSummary{SafeTxHash: "0x1", Nonce: 1, Confirmations: 1, ConfirmationsRequired: 3}

	tests := []struct {
		name    string
		prev    safetx.TxSummary
		seen    bool
		cur     safetx.TxSummary
		want    safetx.EventType
		changed bool
	}{
		{name: "new pending transaction is created", cur: pending, want: safetx.EventCreated, changed: true},
		{name: "new executed transaction is executed", cur: executed, want: safetx.EventExecuted, changed: true},
		{name: "unchanged transaction reports nothing", prev: pending, seen: true, cur: pending},
		{name: "new confirmation is an update", prev: pending, seen: true, cur: signed, want: safetx.EventUpdated, changed: true},
		{name: "threshold change is an update", prev: pending, seen: true, cur: raisedThreshold, want: safetx.EventUpdated, changed: true},
		{name: "execution is reported", prev: signed, seen: true, cur: executed, want: safetx.EventExecuted, changed: true},
		{name: "executed transactions are final", prev: executed, seen: true, cur: executed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := classify(tt.prev, tt.seen, tt.cur)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, got)
		})
	}
}
