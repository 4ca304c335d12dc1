package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Worker is an employee enrolled by an employer for earned wage access.
type Worker struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	EmployerID  string `gorm:"type:uuid;index;not null" json:"employer_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `gorm:"index" json:"phone_number"`
	UPIID       string `json:"upi_id"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	JoinedAt    time.Time
	UpdatedAt   time.Time
}

// WorkerBalance is the withdrawal view of a worker's current month.
// All amounts carry two decimal places.
type WorkerBalance struct {
	TotalEarned         decimal.Decimal `json:"total_earned"`
	TotalWithdrawn      decimal.Decimal `json:"total_withdrawn"`
	MaxWithdrawable     decimal.Decimal `json:"max_withdrawable"`
	AvailableToWithdraw decimal.Decimal `json:"available_to_withdraw"`
	NextPayday          time.Time       `json:"next_payday"`
	PaydayAmount        decimal.Decimal `json:"payday_amount"`
}
