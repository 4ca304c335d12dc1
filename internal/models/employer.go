package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalConfig is the employer-owned policy for early withdrawals.
// The settlement engine reads it but never mutates it.
type WithdrawalConfig struct {
	MaxPercentage int             `gorm:"default:40" json:"max_percentage"`
	MinAmount     decimal.Decimal `gorm:"type:numeric(12,2);default:100" json:"min_amount"`
	MaxAmount     decimal.Decimal `gorm:"type:numeric(12,2);default:10000" json:"max_amount"`
	PaydayDate    int             `gorm:"default:1" json:"payday_date"`
}

type Employer struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	CompanyName string `json:"company_name"`
	PhoneNumber string `gorm:"index" json:"phone_number"`
	GSTNumber   string `json:"gst_number,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Config WithdrawalConfig `gorm:"embedded;embeddedPrefix:config_" json:"withdrawal_config"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
