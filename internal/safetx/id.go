package safetx

import (
	"errors"
	"fmt"
	"strings"
)

// txIDPrefix is the literal first segment of every multisig composite id.
const txIDPrefix = "multisig"

// ErrInvalidTxID is returned when a composite transaction id does not have
// the form multisig_<safe>_<safeTxHash>.
var ErrInvalidTxID = errors.New("invalid composite transaction id")

// FormatTxID builds the composite identifier multisig_<safe>_<safeTxHash>.
func FormatTxID(safe, safeTxHash string) string {
	return txIDPrefix + "_" + safe + "_" + safeTxHash
}

// ParseTxID splits a composite identifier on "_" and returns its Safe
// address (second segment) and transaction hash (third segment).
func ParseTxID(id string) (safe, safeTxHash string, err error) {
	parts := strings.Split(id, "_")
	if len(parts) < 3 || parts[0] != txIDPrefix {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTxID, id)
	}

	return parts[1], parts[2], nil
}
