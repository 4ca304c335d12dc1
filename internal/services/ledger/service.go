// Package ledger owns the wage ledger lifecycle: creation per worker
// and month, accrual of attendance earnings, and balance queries. It is
// the only writer of TotalEarned; TotalWithdrawn is consumed by the
// withdrawal engine through the same version-conditioned store writes.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earnedpay/internal/models"
	"earnedpay/internal/repositories"
	"earnedpay/internal/services/wage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Version-conflict retries before an operation gives up.
const maxConflictRetries = 3

// Service is the Wage Ledger Manager.
type Service interface {
	GetOrCreateActiveLedger(ctx context.Context, workerID, employerID, month string) (*models.WageLedger, error)
	Accrue(ctx context.Context, ledgerID string, earned decimal.Decimal) (*models.WageLedger, error)
	Balance(ctx context.Context, workerID string) (*models.WorkerBalance, error)
	ProcessAttendance(ctx context.Context, employerID string, entries []AttendanceInput) ([]ProcessedEntry, error)
}

type service struct {
	repos *repositories.Repos
	uow   repositories.UnitOfWork
	cache repositories.LedgerCache
}

// NewService creates a new ledger service.
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

func (s *service) GetOrCreateActiveLedger(ctx context.Context, workerID, employerID, month string) (*models.WageLedger, error) {
	worker, err := s.repos.Workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, ErrWorkerNotFound
	}
	if worker.EmployerID != employerID || !worker.IsActive {
		return nil, ErrWorkerNotFound
	}

	existing, err := s.repos.Ledgers.GetActiveByWorkerMonth(ctx, workerID, month)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrLedgerNotFound) {
		return nil, fmt.Errorf("failed to resolve ledger: %w", err)
	}

	employer, err := s.repos.Employers.GetByID(ctx, employerID)
	if err != nil {
		return nil, ErrEmployerNotFound
	}

	now := time.Now().UTC()
	created := &models.WageLedger{
		ID:               uuid.NewString(),
		WorkerID:         workerID,
		EmployerID:       employerID,
		Month:            month,
		TotalEarned:      decimal.Zero,
		TotalWithdrawn:   decimal.Zero,
		AvailableBalance: decimal.Zero,
		PaydayDate:       wage.NextPayday(employer.Config.PaydayDate, now),
		Status:           models.LedgerStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repos.Ledgers.Create(ctx, created); err != nil {
		// A concurrent caller may have created the period's ledger first.
		if existing, getErr := s.repos.Ledgers.GetActiveByWorkerMonth(ctx, workerID, month); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	s.cache.SetLedger(ctx, created)
	return created, nil
}

func (s *service) Accrue(ctx context.Context, ledgerID string, earned decimal.Decimal) (*models.WageLedger, error) {
	if earned.IsNegative() {
		return nil, ErrInvalidAmount
	}

	var updated *models.WageLedger
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		ledger, err := s.accrueOnce(ctx, s.repos, ledgerID, earned)
		if errors.Is(err, repositories.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		updated = ledger
		break
	}
	if updated == nil {
		return nil, ErrConflict
	}

	s.cache.DeleteLedger(ctx, updated.WorkerID, updated.Month)
	return updated, nil
}

// accrueOnce performs a single read-compute-conditional-write round.
// Callers handle repositories.ErrVersionConflict by retrying.
func (s *service) accrueOnce(ctx context.Context, r *repositories.Repos, ledgerID string, earned decimal.Decimal) (*models.WageLedger, error) {
	ledger, err := r.Ledgers.GetByID(ctx, ledgerID)
	if err != nil {
		if errors.Is(err, repositories.ErrLedgerNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	if !ledger.IsActive() {
		return nil, ErrLedgerNotActive
	}

	employer, err := r.Employers.GetByID(ctx, ledger.EmployerID)
	if err != nil {
		return nil, ErrEmployerNotFound
	}

	ledger.TotalEarned = ledger.TotalEarned.Add(earned).Round(2)
	bal := wage.AvailableBalance(ledger.TotalEarned, ledger.TotalWithdrawn, employer.Config.MaxPercentage)
	ledger.AvailableBalance = bal.AvailableToWithdraw

	if err := r.Ledgers.UpdateBalances(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *service) Balance(ctx context.Context, workerID string) (*models.WorkerBalance, error) {
	worker, err := s.repos.Workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, ErrWorkerNotFound
	}
	employer, err := s.repos.Employers.GetByID(ctx, worker.EmployerID)
	if err != nil {
		return nil, ErrEmployerNotFound
	}

	now := time.Now().UTC()
	month := wage.MonthOf(now)
	nextPayday := wage.NextPayday(employer.Config.PaydayDate, now)

	ledger, err := s.lookupLedger(ctx, workerID, month)
	if err != nil {
		if errors.Is(err, repositories.ErrLedgerNotFound) {
			// No earnings yet this month.
			return &models.WorkerBalance{
				TotalEarned:         decimal.Zero,
				TotalWithdrawn:      decimal.Zero,
				MaxWithdrawable:     decimal.Zero,
				AvailableToWithdraw: decimal.Zero,
				NextPayday:          nextPayday,
				PaydayAmount:        decimal.Zero,
			}, nil
		}
		return nil, err
	}

	bal := wage.AvailableBalance(ledger.TotalEarned, ledger.TotalWithdrawn, employer.Config.MaxPercentage)
	return &models.WorkerBalance{
		TotalEarned:         bal.TotalEarned,
		TotalWithdrawn:      bal.TotalWithdrawn,
		MaxWithdrawable:     bal.MaxWithdrawable,
		AvailableToWithdraw: bal.AvailableToWithdraw,
		NextPayday:          nextPayday,
		PaydayAmount:        bal.TotalEarned.Sub(bal.TotalWithdrawn),
	}, nil
}

// lookupLedger is a cache-aside read of the worker's active ledger.
func (s *service) lookupLedger(ctx context.Context, workerID, month string) (*models.WageLedger, error) {
	if cached, err := s.cache.GetLedger(ctx, workerID, month); err == nil && cached != nil {
		return cached, nil
	}

	ledger, err := s.repos.Ledgers.GetActiveByWorkerMonth(ctx, workerID, month)
	if err != nil {
		return nil, err
	}
	s.cache.SetLedger(ctx, ledger)
	return ledger, nil
}

func (s *service) ProcessAttendance(ctx context.Context, employerID string, entries []AttendanceInput) ([]ProcessedEntry, error) {
	processed := make([]ProcessedEntry, 0, len(entries))

	for _, entry := range entries {
		if entry.HoursWorked < 0 || entry.HoursWorked > 24 {
			return nil, fmt.Errorf("%w: hours_worked must be within 0-24", ErrInvalidEntry)
		}
		if entry.WagePerHour.IsNegative() {
			return nil, fmt.Errorf("%w: wage_per_hour must not be negative", ErrInvalidEntry)
		}
		date, err := time.ParseInLocation("2006-01-02", entry.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrInvalidEntry, entry.Date)
		}

		month := wage.MonthOf(date)
		target, err := s.GetOrCreateActiveLedger(ctx, entry.WorkerID, employerID, month)
		if err != nil {
			return nil, err
		}

		earned := wage.DailyEarnings(entry.HoursWorked, entry.WagePerHour)
		status := entry.Status
		if status == "" {
			status = "present"
		}

		// The entry write and its accrual commit or roll back together,
		// so an attendance day can never feed a ledger twice or not at
		// all.
		var applied bool
		for attempt := 0; attempt < maxConflictRetries; attempt++ {
			err = s.uow.Do(ctx, func(r *repositories.Repos) error {
				record := &models.AttendanceEntry{
					ID:          uuid.NewString(),
					WorkerID:    entry.WorkerID,
					EmployerID:  employerID,
					Date:        date,
					HoursWorked: entry.HoursWorked,
					WagePerHour: entry.WagePerHour.Round(2),
					TotalEarned: earned,
					Status:      status,
					CreatedAt:   time.Now().UTC(),
				}
				if err := r.Attendance.Create(ctx, record); err != nil {
					return err
				}
				_, err := s.accrueOnce(ctx, r, target.ID, earned)
				return err
			})
			if errors.Is(err, repositories.ErrVersionConflict) {
				continue
			}
			if err != nil {
				return nil, err
			}
			applied = true
			break
		}
		if !applied {
			return nil, ErrConflict
		}

		s.cache.DeleteLedger(ctx, entry.WorkerID, month)
		processed = append(processed, ProcessedEntry{
			WorkerID: entry.WorkerID,
			Date:     entry.Date,
			Earned:   earned,
		})
	}

	return processed, nil
}
