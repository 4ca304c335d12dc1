package repositories

import (
	"context"

	"earnedpay/internal/models"

	"github.com/shopspring/decimal"
)

// LedgerRepository is the record-store adapter for wage ledgers.
//
// UpdateBalances and MarkSettled are conditional writes: UpdateBalances
// succeeds only if the ledger's version is unchanged since it was read
// (and bumps it), MarkSettled only if the ledger is still active. Both
// report conflicts instead of overwriting, which is what serializes
// concurrent balance mutations on one ledger.
type LedgerRepository interface {
	Create(ctx context.Context, ledger *models.WageLedger) error
	GetByID(ctx context.Context, id string) (*models.WageLedger, error)
	GetActiveByWorkerMonth(ctx context.Context, workerID, month string) (*models.WageLedger, error)
	ListByEmployerMonth(ctx context.Context, employerID, month, status string) ([]*models.WageLedger, error)
	UpdateBalances(ctx context.Context, ledger *models.WageLedger) error
	MarkSettled(ctx context.Context, ledgerID string) error
	SumByEmployerMonth(ctx context.Context, employerID, month, status string) (earned, withdrawn decimal.Decimal, err error)
}
