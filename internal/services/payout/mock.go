package payout

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mockGateway settles every payout instantly and successfully. It
// stands in for the real UPI gateway outside production.
type mockGateway struct{}

// NewMockGateway returns the mock UPI gateway.
func NewMockGateway() Gateway {
	return &mockGateway{}
}

func (g *mockGateway) InitiatePayout(ctx context.Context, upiID string, amount decimal.Decimal, referenceID string) (*Result, error) {
	transactionID := "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])

	log.Printf("Mock UPI payout: %s to %s (ref: %s, txn: %s)",
		amount.StringFixed(2), upiID, referenceID, transactionID)

	return &Result{
		Success:       true,
		TransactionID: transactionID,
		Status:        StatusCompleted,
		Message:       fmt.Sprintf("Successfully transferred %s to %s", amount.StringFixed(2), upiID),
	}, nil
}

func (g *mockGateway) CheckStatus(ctx context.Context, referenceID string) (*Status, error) {
	return &Status{
		TransactionID: referenceID,
		Status:        StatusCompleted,
		Message:       "Payment successful",
	}, nil
}

// NewGateway selects the gateway implementation. Only the mock is
// wired; a real UPI integration plugs in behind the same interface.
func NewGateway(mockMode bool) (Gateway, error) {
	if mockMode {
		return NewMockGateway(), nil
	}
	return nil, fmt.Errorf("%w: real UPI integration not configured", ErrGatewayUnavailable)
}
