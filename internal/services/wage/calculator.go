// Package wage holds the pure monetary math of the engine: the
// withdrawal cap, daily earnings, and payday computation. Every
// component that needs the withdrawal cap goes through
// AvailableBalance so balance queries, accrual, and withdrawal
// validation can never disagree.
package wage

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Balance is the result of the withdrawal cap computation. All amounts
// are rounded to two decimal places, half-up.
type Balance struct {
	TotalEarned         decimal.Decimal
	TotalWithdrawn      decimal.Decimal
	MaxWithdrawable     decimal.Decimal
	AvailableToWithdraw decimal.Decimal
}

// AvailableBalance computes how much of the month's earnings a worker
// may still withdraw:
//
//	max_withdrawable = total_earned * max_percentage / 100
//	available        = max(0, max_withdrawable - total_withdrawn)
//
// maxPercentage is the employer's configured cap in [30,50].
func AvailableBalance(totalEarned, totalWithdrawn decimal.Decimal, maxPercentage int) Balance {
	maxWithdrawable := totalEarned.
		Mul(decimal.NewFromInt(int64(maxPercentage))).
		Div(oneHundred).
		Round(2)

	available := maxWithdrawable.Sub(totalWithdrawn)
	if available.IsNegative() {
		available = decimal.Zero
	}

	return Balance{
		TotalEarned:         totalEarned.Round(2),
		TotalWithdrawn:      totalWithdrawn.Round(2),
		MaxWithdrawable:     maxWithdrawable,
		AvailableToWithdraw: available.Round(2),
	}
}

// DailyEarnings computes the amount earned for one attendance day.
func DailyEarnings(hoursWorked float64, wagePerHour decimal.Decimal) decimal.Decimal {
	return wagePerHour.Mul(decimal.NewFromFloat(hoursWorked)).Round(2)
}

// NextPayday returns the next payday at month start (midnight UTC).
// dayOfMonth is clamped to at most 28 so short months never produce an
// invalid date. If today's day-of-month has already reached dayOfMonth,
// the payday falls in the following month.
func NextPayday(dayOfMonth int, now time.Time) time.Time {
	day := dayOfMonth
	if day > 28 {
		day = 28
	}
	payday := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC)
	if now.Day() >= dayOfMonth {
		payday = payday.AddDate(0, 1, 0)
	}
	return payday
}

// MonthOf formats t's calendar month as YYYY-MM in UTC, the ledger
// period key used across the engine.
func MonthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
