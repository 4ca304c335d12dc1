package ledger

import "errors"

// Service errors
var (
	ErrWorkerNotFound   = errors.New("worker not found for employer")
	ErrEmployerNotFound = errors.New("employer not found")
	ErrLedgerNotFound   = errors.New("wage ledger not found")
	ErrLedgerNotActive  = errors.New("wage ledger is not active")
	ErrInvalidAmount    = errors.New("invalid accrual amount")
	ErrInvalidEntry     = errors.New("invalid attendance entry")
	ErrConflict         = errors.New("ledger update conflicted, retries exhausted")
)
