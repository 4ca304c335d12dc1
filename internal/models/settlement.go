package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const SettlementStatusCompleted = "completed"

// WorkerSettlement is one worker's line item inside a settlement.
type WorkerSettlement struct {
	WorkerID   string          `json:"worker_id"`
	WorkerName string          `json:"worker_name"`
	Earned     decimal.Decimal `json:"earned"`
	Withdrawn  decimal.Decimal `json:"withdrawn"`
	NetPaid    decimal.Decimal `json:"net_paid"`
}

// WorkerSettlementList stores the per-worker breakdown as a JSON column.
type WorkerSettlementList []WorkerSettlement

func (l WorkerSettlementList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *WorkerSettlementList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Settlement closes one employer's month: every active ledger for the
// period is transitioned to settled and summarized here. The record is
// immutable and unique per (employer, month).
type Settlement struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	EmployerID string `gorm:"type:uuid;index:idx_settlement_period,unique" json:"employer_id"`
	Month      string `gorm:"size:7;index:idx_settlement_period,unique" json:"month"` // YYYY-MM

	TotalWorkers     int             `json:"total_workers"`
	TotalEarnings    decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_earnings"`
	TotalWithdrawals decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_withdrawals"`
	NetSettlement    decimal.Decimal `gorm:"type:numeric(14,2)" json:"net_settlement"`

	WorkerSettlements WorkerSettlementList `gorm:"type:jsonb" json:"worker_settlements"`

	SettledAt time.Time `json:"settled_at"`
	Status    string    `gorm:"default:'completed'" json:"status"`
}
