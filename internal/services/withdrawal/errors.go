package withdrawal

import "errors"

// Service errors
var (
	ErrNoActiveLedger      = errors.New("no active wage ledger found")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrAboveMaximum        = errors.New("amount above maximum withdrawal")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrPayoutFailed        = errors.New("payout failed")

	// ErrLedgerConflict means the payout completed externally but the
	// ledger could not absorb it. The withdrawal is marked failed with
	// ReasonLedgerConflict and must be reconciled manually; it is never
	// retried automatically.
	ErrLedgerConflict = errors.New("ledger conflict after completed payout")
)

// ReasonLedgerConflict is the failure reason recorded on withdrawals
// that need manual reconciliation with the payout gateway.
const ReasonLedgerConflict = "LedgerConflict"
