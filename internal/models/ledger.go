package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger statuses. A ledger settles exactly once and is immutable after.
const (
	LedgerStatusActive  = "active"
	LedgerStatusSettled = "settled"
)

// WageLedger tracks one worker's earnings and withdrawals for one
// calendar month. TotalEarned and TotalWithdrawn only grow while the
// ledger is active; AvailableBalance is derived from them through the
// employer's withdrawal cap.
//
// Version is the optimistic concurrency token: every balance-affecting
// write is conditioned on the version read and bumps it, so concurrent
// writers cannot overwrite each other's balances.
type WageLedger struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	WorkerID   string `gorm:"type:uuid;index:idx_ledger_worker_month" json:"worker_id"`
	EmployerID string `gorm:"type:uuid;index" json:"employer_id"`
	Month      string `gorm:"size:7;index:idx_ledger_worker_month" json:"month"` // YYYY-MM

	TotalEarned      decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"total_earned"`
	TotalWithdrawn   decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"total_withdrawn"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"available_balance"`

	PaydayDate time.Time `json:"payday_date"`
	Status     string    `gorm:"default:'active';index" json:"status"`
	Version    int64     `gorm:"default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the ledger still accepts mutations.
func (l *WageLedger) IsActive() bool {
	return l.Status == LedgerStatusActive
}
