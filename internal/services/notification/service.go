// Package notification delivers fire-and-forget messages. Delivery
// failures are logged and never affect the operation that triggered
// them.
package notification

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
)

// Service is the notification collaborator contract.
type Service interface {
	SendWithdrawalConfirmation(ctx context.Context, phoneNumber string, amount decimal.Decimal, transactionID string) error
	SendSettlementSummary(ctx context.Context, phoneNumber, month string, netSettlement decimal.Decimal) error
}

// logService logs notifications instead of delivering them. An SMS or
// push provider plugs in behind the same interface.
type logService struct{}

// NewService creates the notification service.
func NewService() Service { return &logService{} }

func (s *logService) SendWithdrawalConfirmation(ctx context.Context, phoneNumber string, amount decimal.Decimal, transactionID string) error {
	log.Printf("Notify %s: withdrawal of %s completed (txn %s)",
		phoneNumber, amount.StringFixed(2), transactionID)
	return nil
}

func (s *logService) SendSettlementSummary(ctx context.Context, phoneNumber, month string, netSettlement decimal.Decimal) error {
	log.Printf("Notify %s: settlement for %s processed, net %s",
		phoneNumber, month, netSettlement.StringFixed(2))
	return nil
}
