package safeindex

import (
	"github.com/gabapcia/safewatch/internal/safetx"

	"github.com/samber/lo"
)

// statusSuccess is the txStatus of an executed transaction.
const statusSuccess = "SUCCESS"

type (
	// addressInfo is an address annotated by the remote service.
	addressInfo struct {
		Value   string `json:"value"`
		Name    string `json:"name"`
		LogoURI string `json:"logoUri"`
	}

	// listResponse is one page of GET /api/v2/safes/{address}/multisig-transactions.
	listResponse struct {
		Next     *string      `json:"next"`
		Previous *string      `json:"previous"`
		Results  []listResult `json:"results"`
	}

	listResult struct {
		Type         string   `json:"type"`
		Transaction  listedTx `json:"transaction"`
		ConflictType string   `json:"conflictType"`
	}

	// listedTx is the list-summary shape of a transaction.
	listedTx struct {
		ID            string `json:"id"`
		Timestamp     int64  `json:"timestamp"`
		TxStatus      string `json:"txStatus"`
		TxHash        string `json:"txHash"`
		ExecutionInfo struct {
			Type                   string `json:"type"`
			Nonce                  int64  `json:"nonce"`
			ConfirmationsRequired  int    `json:"confirmationsRequired"`
			ConfirmationsSubmitted int    `json:"confirmationsSubmitted"`
		} `json:"executionInfo"`
	}

	// transaction is the full-detail shape of GET /api/v2/safes/multisig-transactions/{safeTxHash}.
	transaction struct {
		SafeAddress string `json:"safeAddress"`
		TxID        string `json:"txId"`
		TxStatus    string `json:"txStatus"`
		TxHash      string `json:"txHash"`
		TxInfo      struct {
			Type       string      `json:"type"`
			To         addressInfo `json:"to"`
			Value      string      `json:"value"`
			MethodName string      `json:"methodName"`
		} `json:"txInfo"`
		TxData struct {
			HexData   string      `json:"hexData"`
			To        addressInfo `json:"to"`
			Value     string      `json:"value"`
			Operation int         `json:"operation"`
		} `json:"txData"`
		DetailedExecutionInfo struct {
			Type                  string         `json:"type"`
			SubmittedAt           int64          `json:"submittedAt"`
			Nonce                 int64          `json:"nonce"`
			ConfirmationsRequired int            `json:"confirmationsRequired"`
			Confirmations         []confirmation `json:"confirmations"`
			Proposer              addressInfo    `json:"proposer"`
		} `json:"detailedExecutionInfo"`
	}

	confirmation struct {
		Signer      addressInfo `json:"signer"`
		Signature   string      `json:"signature"`
		SubmittedAt int64       `json:"submittedAt"`
	}
)

// emptyPage is what a failed list request degrades to.
func emptyPage() listResponse {
	return listResponse{Results: []listResult{}}
}

// nextURL returns the continuation URL, or "" when this is the last page.
func (r listResponse) nextURL() string {
	if r.Next == nil {
		return ""
	}
	return *r.Next
}

// toSummary normalizes the list-summary shape. The hash is always taken from
// the composite id.
func (t listedTx) toSummary() (safetx.TxSummary, error) {
	_, safeTxHash, err := safetx.ParseTxID(t.ID)
	if err != nil {
		return safetx.TxSummary{}, err
	}

	return safetx.TxSummary{
		SafeTxHash:            safeTxHash,
		Nonce:                 t.ExecutionInfo.Nonce,
		Confirmations:         t.ExecutionInfo.ConfirmationsSubmitted,
		ConfirmationsRequired: t.ExecutionInfo.ConfirmationsRequired,
		IsExecuted:            t.TxStatus == statusSuccess,
	}, nil
}

// toDetail normalizes the full-detail shape. The proposer is the signer of
// the first confirmation as listed by the remote; the service does not
// document that confirmations are ordered by submission time.
func (t transaction) toDetail() (safetx.TxDetail[string], error) {
	_, safeTxHash, err := safetx.ParseTxID(t.TxID)
	if err != nil {
		return safetx.TxDetail[string]{}, err
	}

	info := t.DetailedExecutionInfo

	proposer := safetx.ZeroAddress
	if len(info.Confirmations) > 0 {
		proposer = info.Confirmations[0].Signer.Value
	}

	return safetx.TxDetail[string]{
		SafeTxHash: safeTxHash,
		Nonce:      info.Nonce,
		To:         t.TxInfo.To.Value,
		Operation:  t.TxData.Operation,
		Proposer:   proposer,
		Confirmations: lo.Map(info.Confirmations, func(c confirmation, _ int) string {
			return c.Signer.Value
		}),
		ConfirmationsRequired: info.ConfirmationsRequired,
		IsExecuted:            t.TxStatus == statusSuccess,
	}, nil
}
