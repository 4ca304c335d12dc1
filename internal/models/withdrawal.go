package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal statuses. Completed and failed are terminal and immutable;
// pending is reserved for queued payouts.
const (
	WithdrawalStatusPending    = "pending"
	WithdrawalStatusProcessing = "processing"
	WithdrawalStatusCompleted  = "completed"
	WithdrawalStatusFailed     = "failed"
)

// Withdrawal is one withdrawal attempt against a wage ledger. The
// record is created before the payout gateway is invoked so that a
// crash mid-flight is still auditable.
type Withdrawal struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	WorkerID   string `gorm:"type:uuid;index" json:"worker_id"`
	EmployerID string `gorm:"type:uuid;index" json:"employer_id"`
	LedgerID   string `gorm:"type:uuid;index" json:"ledger_id"`

	Amount    decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	UPIID     string          `json:"upi_id"`
	FeeAmount decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"fee_amount"`

	Status        string     `gorm:"default:'processing';index" json:"status"`
	RequestedAt   time.Time  `json:"requested_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"` // gateway reference
	FailureReason string     `json:"failure_reason,omitempty"`
	Metadata      JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// IsTerminal reports whether the withdrawal reached a final state.
func (w *Withdrawal) IsTerminal() bool {
	return w.Status == WithdrawalStatusCompleted || w.Status == WithdrawalStatusFailed
}
