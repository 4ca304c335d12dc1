package settlement

import "errors"

// Service errors
var (
	ErrNothingToSettle = errors.New("no active ledgers to settle for period")
	ErrAlreadySettled  = errors.New("period already settled")
	ErrConflict        = errors.New("settlement conflicted with a concurrent run")

	// ErrRepairRequired means the period holds settled ledgers but no
	// settlement record: a previous run died between the ledger
	// transitions and the settlement write. The period must be repaired
	// by an operator, never silently re-settled.
	ErrRepairRequired = errors.New("period in inconsistent state, repair required")
)
