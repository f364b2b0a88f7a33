// Package safetx holds the canonical, API-version-independent model of Safe
// multisig transactions and lifecycle events, plus the capability interfaces
// implemented by transaction-index backends and notification channels.
package safetx

import "github.com/ethereum/go-ethereum/common"

// ZeroAddress is reported as the proposer of a transaction that has no
// confirmations yet.
var ZeroAddress = common.Address{}.Hex()

// TxSummary is the list-page projection of a multisig transaction.
//
// Confirmations is not guaranteed to be lower than or equal to
// ConfirmationsRequired; it reports whatever the remote source states.
type TxSummary struct {
	SafeTxHash            string `json:"safeTxHash"`
	Nonce                 int64  `json:"nonce"`
	Confirmations         int    `json:"confirmations"`
	ConfirmationsRequired int    `json:"confirmationsRequired"`
	IsExecuted            bool   `json:"isExecuted"`
}

// Signer is a confirming owner of a Safe. Name is empty when unknown.
type Signer struct {
	Address string
	Name    string
}

// TxDetail is the full record of a single multisig transaction. S is the
// representation of signers: index backends produce TxDetail[string] with
// raw addresses, notifiers consume TxDetail[Signer].
//
// Proposer is the signer of the earliest confirmation, or ZeroAddress when
// there are none. Confirmations lists the confirming signers in the order
// reported by the remote source.
type TxDetail[S any] struct {
	SafeTxHash            string
	Nonce                 int64
	To                    string
	Operation             int
	Proposer              S
	Confirmations         []S
	ConfirmationsRequired int
	IsExecuted            bool
}

// Signed returns how many confirmations the transaction has collected.
func (t TxDetail[S]) Signed() int {
	return len(t.Confirmations)
}
