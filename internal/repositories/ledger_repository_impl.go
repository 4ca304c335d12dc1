package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earnedpay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, ledger *models.WageLedger) error {
	if err := r.db.WithContext(ctx).Create(ledger).Error; err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetByID(ctx context.Context, id string) (*models.WageLedger, error) {
	var ledger models.WageLedger
	if err := r.db.WithContext(ctx).First(&ledger, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return &ledger, nil
}

func (r *ledgerRepository) GetActiveByWorkerMonth(ctx context.Context, workerID, month string) (*models.WageLedger, error) {
	var ledger models.WageLedger
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND month = ? AND status = ?", workerID, month, models.LedgerStatusActive).
		First(&ledger).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to get active ledger: %w", err)
	}
	return &ledger, nil
}

func (r *ledgerRepository) ListByEmployerMonth(ctx context.Context, employerID, month, status string) ([]*models.WageLedger, error) {
	var ledgers []*models.WageLedger
	err := r.db.WithContext(ctx).
		Where("employer_id = ? AND month = ? AND status = ?", employerID, month, status).
		Order("created_at ASC").
		Find(&ledgers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	return ledgers, nil
}

// UpdateBalances writes the ledger's balance fields conditioned on the
// version read by the caller. Zero rows affected means another writer
// got there first (or the ledger settled in the meantime).
func (r *ledgerRepository) UpdateBalances(ctx context.Context, ledger *models.WageLedger) error {
	result := r.db.WithContext(ctx).
		Model(&models.WageLedger{}).
		Where("id = ? AND version = ? AND status = ?",
			ledger.ID, ledger.Version, models.LedgerStatusActive).
		Updates(map[string]interface{}{
			"total_earned":      ledger.TotalEarned,
			"total_withdrawn":   ledger.TotalWithdrawn,
			"available_balance": ledger.AvailableBalance,
			"version":           ledger.Version + 1,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update ledger balances: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	ledger.Version++
	return nil
}

// MarkSettled transitions a ledger from active to settled. The status
// condition makes the transition happen exactly once.
func (r *ledgerRepository) MarkSettled(ctx context.Context, ledgerID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.WageLedger{}).
		Where("id = ? AND status = ?", ledgerID, models.LedgerStatusActive).
		Updates(map[string]interface{}{
			"status":     models.LedgerStatusSettled,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to settle ledger: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *ledgerRepository) SumByEmployerMonth(ctx context.Context, employerID, month, status string) (decimal.Decimal, decimal.Decimal, error) {
	var totals struct {
		Earned    decimal.Decimal
		Withdrawn decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.WageLedger{}).
		Where("employer_id = ? AND month = ? AND status = ?", employerID, month, status).
		Select("COALESCE(SUM(total_earned), 0) as earned, COALESCE(SUM(total_withdrawn), 0) as withdrawn").
		Scan(&totals).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum ledgers: %w", err)
	}
	return totals.Earned, totals.Withdrawn, nil
}
