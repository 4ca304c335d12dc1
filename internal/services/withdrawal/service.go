// Package withdrawal validates and executes early wage withdrawals.
//
// The engine's safety property: two withdrawals that individually fit
// the available balance but jointly exceed it can never both complete.
// Validation happens before the payout call, but balance consumption is
// re-validated and applied through a version-conditioned ledger write
// after the payout succeeds, so a concurrent withdrawal that consumed
// the balance in between is detected rather than overwritten.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"earnedpay/internal/models"
	"earnedpay/internal/repositories"
	"earnedpay/internal/services/notification"
	"earnedpay/internal/services/payout"
	"earnedpay/internal/services/wage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Version-conflict retries before a post-payout ledger debit gives up.
const maxApplyRetries = 3

const defaultHistoryLimit = 20

// Service is the Withdrawal Engine.
type Service interface {
	Request(ctx context.Context, workerID string, amount decimal.Decimal, upiID string) (*models.Withdrawal, error)
	CheckStatus(ctx context.Context, withdrawalID string) (*models.Withdrawal, error)
	History(ctx context.Context, workerID string, limit int) ([]*models.Withdrawal, error)
}

type service struct {
	repos    *repositories.Repos
	uow      repositories.UnitOfWork
	cache    repositories.LedgerCache
	gateway  payout.Gateway
	notifier notification.Service
}

// NewService creates a new withdrawal service.
func NewService(
	repos *repositories.Repos,
	uow repositories.UnitOfWork,
	cache repositories.LedgerCache,
	gateway payout.Gateway,
	notifier notification.Service,
) Service {
	if repos == nil {
		panic("repos is required")
	}
	if uow == nil {
		panic("unit of work is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if gateway == nil {
		panic("payout gateway is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	return &service{
		repos:    repos,
		uow:      uow,
		cache:    cache,
		gateway:  gateway,
		notifier: notifier,
	}
}

func (s *service) Request(ctx context.Context, workerID string, amount decimal.Decimal, upiID string) (*models.Withdrawal, error) {
	now := time.Now().UTC()
	month := wage.MonthOf(now)
	amount = amount.Round(2)

	ledger, err := s.repos.Ledgers.GetActiveByWorkerMonth(ctx, workerID, month)
	if err != nil {
		if errors.Is(err, repositories.ErrLedgerNotFound) {
			return nil, ErrNoActiveLedger
		}
		return nil, fmt.Errorf("failed to resolve ledger: %w", err)
	}

	employer, err := s.repos.Employers.GetByID(ctx, ledger.EmployerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve employer config: %w", err)
	}
	cfg := employer.Config

	// Ordered checks: minimum, then maximum, then balance. Only the
	// first failing check is reported.
	bal := wage.AvailableBalance(ledger.TotalEarned, ledger.TotalWithdrawn, cfg.MaxPercentage)
	if amount.LessThan(cfg.MinAmount) {
		return nil, fmt.Errorf("%w: minimum is %s", ErrBelowMinimum, cfg.MinAmount.StringFixed(2))
	}
	if amount.GreaterThan(cfg.MaxAmount) {
		return nil, fmt.Errorf("%w: maximum is %s", ErrAboveMaximum, cfg.MaxAmount.StringFixed(2))
	}
	if amount.GreaterThan(bal.AvailableToWithdraw) {
		return nil, fmt.Errorf("%w: available is %s", ErrInsufficientBalance, bal.AvailableToWithdraw.StringFixed(2))
	}

	// The record exists before the gateway is invoked so a crash after
	// submission is still auditable.
	w := &models.Withdrawal{
		ID:          uuid.NewString(),
		WorkerID:    workerID,
		EmployerID:  ledger.EmployerID,
		LedgerID:    ledger.ID,
		Amount:      amount,
		UPIID:       upiID,
		FeeAmount:   decimal.Zero,
		Status:      models.WithdrawalStatusProcessing,
		RequestedAt: now,
	}
	if err := s.repos.Withdrawals.Create(ctx, w); err != nil {
		return nil, err
	}

	result, err := s.gateway.InitiatePayout(ctx, upiID, amount, w.ID)
	if err != nil {
		s.failWithdrawal(ctx, w.ID, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrPayoutFailed, err)
	}
	if !result.Success {
		s.failWithdrawal(ctx, w.ID, result.Message)
		return nil, fmt.Errorf("%w: %s", ErrPayoutFailed, result.Message)
	}

	// Money has moved. The ledger debit and the completion mark are one
	// unit of work; if the ledger cannot absorb the debit the record is
	// failed with ReasonLedgerConflict for manual reconciliation.
	if err := s.settleCompleted(ctx, w.ID, w.LedgerID, amount, result.TransactionID); err != nil {
		if errors.Is(err, ErrLedgerConflict) {
			s.failWithdrawal(ctx, w.ID, ReasonLedgerConflict)
			log.Printf("withdrawal %s needs manual reconciliation with payout gateway (txn %s): %v",
				w.ID, result.TransactionID, err)
			return nil, ErrLedgerConflict
		}
		s.failWithdrawal(ctx, w.ID, err.Error())
		return nil, err
	}

	s.cache.DeleteLedger(ctx, workerID, month)
	s.notifyCompleted(workerID, amount, result.TransactionID)

	return s.repos.Withdrawals.GetByID(ctx, w.ID)
}

// settleCompleted applies a completed payout: re-read the ledger,
// re-validate the cap, debit conditioned on the ledger version, and
// mark the withdrawal completed — all in one transaction. Version
// conflicts are retried a bounded number of times.
func (s *service) settleCompleted(ctx context.Context, withdrawalID, ledgerID string, amount decimal.Decimal, transactionID string) error {
	for attempt := 0; attempt < maxApplyRetries; attempt++ {
		err := s.uow.Do(ctx, func(r *repositories.Repos) error {
			ledger, err := r.Ledgers.GetByID(ctx, ledgerID)
			if err != nil {
				return err
			}
			if !ledger.IsActive() {
				return ErrLedgerConflict
			}

			employer, err := r.Employers.GetByID(ctx, ledger.EmployerID)
			if err != nil {
				return err
			}

			bal := wage.AvailableBalance(ledger.TotalEarned, ledger.TotalWithdrawn, employer.Config.MaxPercentage)
			if amount.GreaterThan(bal.AvailableToWithdraw) {
				// A concurrent withdrawal consumed the balance between
				// validation and now.
				return ErrLedgerConflict
			}

			ledger.TotalWithdrawn = ledger.TotalWithdrawn.Add(amount).Round(2)
			after := wage.AvailableBalance(ledger.TotalEarned, ledger.TotalWithdrawn, employer.Config.MaxPercentage)
			ledger.AvailableBalance = after.AvailableToWithdraw

			if err := r.Ledgers.UpdateBalances(ctx, ledger); err != nil {
				return err
			}
			return r.Withdrawals.MarkCompleted(ctx, withdrawalID, transactionID)
		})
		if errors.Is(err, repositories.ErrVersionConflict) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: retries exhausted", ErrLedgerConflict)
}

// failWithdrawal records a terminal failure. Best effort: the original
// error is what the caller sees, not a marking problem.
func (s *service) failWithdrawal(ctx context.Context, id, reason string) {
	if err := s.repos.Withdrawals.MarkFailed(ctx, id, reason); err != nil {
		log.Printf("failed to mark withdrawal %s failed: %v", id, err)
	}
}

// notifyCompleted fires the confirmation without blocking the request;
// notification failures never affect a completed withdrawal.
func (s *service) notifyCompleted(workerID string, amount decimal.Decimal, transactionID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		worker, err := s.repos.Workers.GetByID(ctx, workerID)
		if err != nil {
			log.Printf("skipping withdrawal notification, worker %s: %v", workerID, err)
			return
		}
		if err := s.notifier.SendWithdrawalConfirmation(ctx, worker.PhoneNumber, amount, transactionID); err != nil {
			log.Printf("withdrawal notification failed for %s: %v", workerID, err)
		}
	}()
}

// CheckStatus resolves a withdrawal stuck in processing by polling the
// gateway. A request that timed out against the gateway is never
// re-submitted; this is the only path that moves it to a terminal
// state.
func (s *service) CheckStatus(ctx context.Context, withdrawalID string) (*models.Withdrawal, error) {
	w, err := s.repos.Withdrawals.GetByID(ctx, withdrawalID)
	if err != nil {
		if errors.Is(err, repositories.ErrWithdrawalNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	if w.IsTerminal() {
		return w, nil
	}

	reference := w.TransactionID
	if reference == "" {
		reference = w.ID
	}
	status, err := s.gateway.CheckStatus(ctx, reference)
	if err != nil {
		// Still unresolved; the record stays processing.
		return w, nil
	}

	switch status.Status {
	case payout.StatusCompleted:
		if err := s.settleCompleted(ctx, w.ID, w.LedgerID, w.Amount, status.TransactionID); err != nil {
			if errors.Is(err, ErrLedgerConflict) {
				s.failWithdrawal(ctx, w.ID, ReasonLedgerConflict)
				log.Printf("withdrawal %s needs manual reconciliation with payout gateway: %v", w.ID, err)
			} else {
				return nil, err
			}
		} else {
			s.cache.DeleteLedger(ctx, w.WorkerID, wage.MonthOf(w.RequestedAt))
		}
	case payout.StatusFailed:
		s.failWithdrawal(ctx, w.ID, status.Message)
	}

	return s.repos.Withdrawals.GetByID(ctx, w.ID)
}

func (s *service) History(ctx context.Context, workerID string, limit int) ([]*models.Withdrawal, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repos.Withdrawals.ListByWorker(ctx, workerID, limit)
}
