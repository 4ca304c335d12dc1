// Package settlement closes out wage ledgers at period end. One run
// per (employer, month): every active ledger transitions to settled and
// a single immutable settlement record captures the totals owed.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earnedpay/internal/models"
	"earnedpay/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the Settlement Aggregator.
type Service interface {
	Process(ctx context.Context, employerID, month string) (*models.Settlement, error)
	List(ctx context.Context, employerID string, limit int) ([]*models.Settlement, error)
}

type service struct {
	repos *repositories.Repos
	uow   repositories.UnitOfWork
	cache repositories.LedgerCache
}

// NewService creates a new settlement service.
func NewService(repos *repositories.Repos, uow repositories.UnitOfWork, cache repositories.LedgerCache) Service {
	if repos == nil {
		panic("repos is required")
	}
	if uow == nil {
		panic("unit of work is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	return &service{repos: repos, uow: uow, cache: cache}
}

// Process closes the employer's month. The duplicate check, the ledger
// transitions and the settlement write run in one transaction, so two
// concurrent runs cannot double-close a period: the loser either sees
// the winner's settlement record or loses the status-conditioned
// transition race and aborts.
func (s *service) Process(ctx context.Context, employerID, month string) (*models.Settlement, error) {
	var settlement *models.Settlement

	err := s.uow.Do(ctx, func(r *repositories.Repos) error {
		if _, err := r.Settlements.GetByEmployerMonth(ctx, employerID, month); err == nil {
			return ErrAlreadySettled
		} else if !errors.Is(err, repositories.ErrSettlementNotFound) {
			return err
		}

		ledgers, err := r.Ledgers.ListByEmployerMonth(ctx, employerID, month, models.LedgerStatusActive)
		if err != nil {
			return err
		}
		if len(ledgers) == 0 {
			settled, err := r.Ledgers.ListByEmployerMonth(ctx, employerID, month, models.LedgerStatusSettled)
			if err != nil {
				return err
			}
			if len(settled) > 0 {
				// Ledgers closed but no settlement record: a previous
				// run failed mid-flight.
				return fmt.Errorf("%w: %d settled ledgers without settlement record", ErrRepairRequired, len(settled))
			}
			return ErrNothingToSettle
		}

		totalEarnings := decimal.Zero
		totalWithdrawals := decimal.Zero
		lineItems := make(models.WorkerSettlementList, 0, len(ledgers))

		for _, l := range ledgers {
			workerName := "Unknown"
			if worker, err := r.Workers.GetByID(ctx, l.WorkerID); err == nil {
				workerName = worker.FullName
			}

			earned := l.TotalEarned.Round(2)
			withdrawn := l.TotalWithdrawn.Round(2)

			totalEarnings = totalEarnings.Add(earned)
			totalWithdrawals = totalWithdrawals.Add(withdrawn)
			lineItems = append(lineItems, models.WorkerSettlement{
				WorkerID:   l.WorkerID,
				WorkerName: workerName,
				Earned:     earned,
				Withdrawn:  withdrawn,
				NetPaid:    earned.Sub(withdrawn),
			})

			if err := r.Ledgers.MarkSettled(ctx, l.ID); err != nil {
				if errors.Is(err, repositories.ErrStateConflict) {
					return fmt.Errorf("%w: ledger %s", ErrConflict, l.ID)
				}
				return err
			}
		}

		settlement = &models.Settlement{
			ID:                uuid.NewString(),
			EmployerID:        employerID,
			Month:             month,
			TotalWorkers:      len(lineItems),
			TotalEarnings:     totalEarnings,
			TotalWithdrawals:  totalWithdrawals,
			NetSettlement:     totalEarnings.Sub(totalWithdrawals),
			WorkerSettlements: lineItems,
			SettledAt:         time.Now().UTC(),
			Status:            models.SettlementStatusCompleted,
		}
		return r.Settlements.Create(ctx, settlement)
	})
	if err != nil {
		return nil, err
	}

	for _, item := range settlement.WorkerSettlements {
		s.cache.DeleteLedger(ctx, item.WorkerID, month)
	}
	return settlement, nil
}

func (s *service) List(ctx context.Context, employerID string, limit int) ([]*models.Settlement, error) {
	if limit <= 0 {
		limit = 12
	}
	return s.repos.Settlements.ListByEmployer(ctx, employerID, limit)
}
