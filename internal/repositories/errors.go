package repositories

import "errors"

// Store-level errors. Services translate these into their own
// taxonomies at the operation boundary.
var (
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrEmployerNotFound   = errors.New("employer not found")
	ErrLedgerNotFound     = errors.New("wage ledger not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrSettlementNotFound = errors.New("settlement not found")

	// ErrVersionConflict signals that a version-conditioned update found
	// the record changed since it was read.
	ErrVersionConflict = errors.New("record version conflict")

	// ErrStateConflict signals that a status-conditioned transition found
	// the record no longer in the expected state.
	ErrStateConflict = errors.New("record state conflict")
)
