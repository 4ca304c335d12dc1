// Package payout defines the contract with the external payout
// collaborator. The engine never talks a payment-network protocol
// itself; it hands the gateway a destination, an amount and a reference
// id, and reacts to the reported outcome.
package payout

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Payout statuses reported by the gateway.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPending   = "pending"
)

var ErrGatewayUnavailable = errors.New("payout gateway unavailable")

// Result is the gateway's response to a payout initiation.
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// Status is the gateway's answer to a status poll.
type Status struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// Gateway is the payout collaborator. InitiatePayout moves money to a
// UPI destination; CheckStatus resolves a previously initiated payout
// by its reference, for transactions stuck in processing.
type Gateway interface {
	InitiatePayout(ctx context.Context, upiID string, amount decimal.Decimal, referenceID string) (*Result, error)
	CheckStatus(ctx context.Context, referenceID string) (*Status, error)
}
