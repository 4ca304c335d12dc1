package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceEntry is an append-only record of one worker-day. It is
// never mutated after creation; its earned amount feeds ledger accrual
// exactly once, in the same unit of work that creates it.
type AttendanceEntry struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	WorkerID    string          `gorm:"type:uuid;index" json:"worker_id"`
	EmployerID  string          `gorm:"type:uuid;index" json:"employer_id"`
	Date        time.Time       `json:"date"`
	HoursWorked float64         `json:"hours_worked"`
	WagePerHour decimal.Decimal `gorm:"type:numeric(12,2)" json:"wage_per_hour"`
	TotalEarned decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_earned"`
	Status      string          `gorm:"default:'present'" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}
