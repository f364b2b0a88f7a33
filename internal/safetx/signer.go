package safetx

import "strings"

// AddressBook maps signer addresses to human-readable names. Lookups are
// case-insensitive so checksummed and lower-case addresses match.
type AddressBook map[string]string

// NewAddressBook builds an AddressBook from address/name pairs.
func NewAddressBook(names map[string]string) AddressBook {
	book := make(AddressBook, len(names))
	for addr, name := range names {
		book[strings.ToLower(addr)] = name
	}
	return book
}

// Signer returns the Signer for address, with a name when one is known.
func (b AddressBook) Signer(address string) Signer {
	return Signer{Address: address, Name: b[strings.ToLower(address)]}
}

// ResolveSigners converts the raw addresses of tx into Signers.
func (b AddressBook) ResolveSigners(tx TxDetail[string]) TxDetail[Signer] {
	confirmations := make([]Signer, len(tx.Confirmations))
	for i, addr := range tx.Confirmations {
		confirmations[i] = b.Signer(addr)
	}

	return TxDetail[Signer]{
		SafeTxHash:            tx.SafeTxHash,
		Nonce:                 tx.Nonce,
		To:                    tx.To,
		Operation:             tx.Operation,
		Proposer:              b.Signer(tx.Proposer),
		Confirmations:         confirmations,
		ConfirmationsRequired: tx.ConfirmationsRequired,
		IsExecuted:            tx.IsExecuted,
	}
}
