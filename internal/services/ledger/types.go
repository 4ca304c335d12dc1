package ledger

import (
	"github.com/shopspring/decimal"
)

// AttendanceInput is one worker-day reported by an employer.
type AttendanceInput struct {
	WorkerID    string          `json:"worker_id"`
	Date        string          `json:"date"` // YYYY-MM-DD
	HoursWorked float64         `json:"hours_worked"`
	WagePerHour decimal.Decimal `json:"wage_per_hour"`
	Status      string          `json:"status"`
}

// ProcessedEntry reports the accrual result for one attendance input.
type ProcessedEntry struct {
	WorkerID string          `json:"worker_id"`
	Date     string          `json:"date"`
	Earned   decimal.Decimal `json:"earned"`
}
