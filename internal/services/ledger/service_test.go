package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"earnedpay/internal/models"
	"earnedpay/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repository fakes. The ledger fake enforces the same
// version- and status-conditioned write semantics as the store adapter.

type memWorkers struct {
	mu   sync.Mutex
	byID map[string]*models.Worker
}

func (m *memWorkers) Create(_ context.Context, w *models.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[w.ID] = w
	return nil
}

func (m *memWorkers) GetByID(_ context.Context, id string) (*models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	if !ok {
		return nil, repositories.ErrWorkerNotFound
	}
	c := *w
	return &c, nil
}

func (m *memWorkers) ListByEmployer(_ context.Context, employerID string, activeOnly bool) ([]*models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Worker
	for _, w := range m.byID {
		if w.EmployerID != employerID || (activeOnly && !w.IsActive) {
			continue
		}
		c := *w
		out = append(out, &c)
	}
	return out, nil
}

func (m *memWorkers) CountByEmployer(_ context.Context, employerID string) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total, active int64
	for _, w := range m.byID {
		if w.EmployerID != employerID {
			continue
		}
		total++
		if w.IsActive {
			active++
		}
	}
	return total, active, nil
}

func (m *memWorkers) UpdateUPI(_ context.Context, workerID, upiID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[workerID]
	if !ok {
		return repositories.ErrWorkerNotFound
	}
	w.UPIID = upiID
	return nil
}

type memEmployers struct {
	mu   sync.Mutex
	byID map[string]*models.Employer
}

func (m *memEmployers) Create(_ context.Context, e *models.Employer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[e.ID] = e
	return nil
}

func (m *memEmployers) GetByID(_ context.Context, id string) (*models.Employer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, repositories.ErrEmployerNotFound
	}
	c := *e
	return &c, nil
}

func (m *memEmployers) Update(_ context.Context, e *models.Employer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[e.ID] = e
	return nil
}

type memLedgers struct {
	mu   sync.Mutex
	byID map[string]*models.WageLedger

	// forceConflicts makes the next N UpdateBalances calls fail with a
	// version conflict regardless of the actual version.
	forceConflicts int
}

func (m *memLedgers) Create(_ context.Context, l *models.WageLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *l
	m.byID[l.ID] = &c
	return nil
}

func (m *memLedgers) GetByID(_ context.Context, id string) (*models.WageLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[id]
	if !ok {
		return nil, repositories.ErrLedgerNotFound
	}
	c := *l
	return &c, nil
}

func (m *memLedgers) GetActiveByWorkerMonth(_ context.Context, workerID, month string) (*models.WageLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.byID {
		if l.WorkerID == workerID && l.Month == month && l.Status == models.LedgerStatusActive {
			c := *l
			return &c, nil
		}
	}
	return nil, repositories.ErrLedgerNotFound
}

func (m *memLedgers) ListByEmployerMonth(_ context.Context, employerID, month, status string) ([]*models.WageLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.WageLedger
	for _, l := range m.byID {
		if l.EmployerID == employerID && l.Month == month && l.Status == status {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memLedgers) UpdateBalances(_ context.Context, l *models.WageLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceConflicts > 0 {
		m.forceConflicts--
		return repositories.ErrVersionConflict
	}
	stored, ok := m.byID[l.ID]
	if !ok {
		return repositories.ErrLedgerNotFound
	}
	if stored.Version != l.Version || stored.Status != models.LedgerStatusActive {
		return repositories.ErrVersionConflict
	}
	c := *l
	c.Version++
	c.UpdatedAt = time.Now().UTC()
	m.byID[l.ID] = &c
	return nil
}

func (m *memLedgers) MarkSettled(_ context.Context, ledgerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[ledgerID]
	if !ok {
		return repositories.ErrLedgerNotFound
	}
	if stored.Status != models.LedgerStatusActive {
		return repositories.ErrStateConflict
	}
	stored.Status = models.LedgerStatusSettled
	stored.Version++
	return nil
}

func (m *memLedgers) SumByEmployerMonth(_ context.Context, employerID, month, status string) (decimal.Decimal, decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	earned, withdrawn := decimal.Zero, decimal.Zero
	for _, l := range m.byID {
		if l.EmployerID == employerID && l.Month == month && l.Status == status {
			earned = earned.Add(l.TotalEarned)
			withdrawn = withdrawn.Add(l.TotalWithdrawn)
		}
	}
	return earned, withdrawn, nil
}

type memAttendance struct {
	mu      sync.Mutex
	entries []*models.AttendanceEntry
}

func (m *memAttendance) Create(_ context.Context, e *models.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAttendance) ListByWorkerMonth(_ context.Context, workerID, month string) ([]*models.AttendanceEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AttendanceEntry
	for _, e := range m.entries {
		if e.WorkerID == workerID && e.Date.Format("2006-01") == month {
			out = append(out, e)
		}
	}
	return out, nil
}

type memUnitOfWork struct {
	repos *repositories.Repos
}

func (u *memUnitOfWork) Do(_ context.Context, fn func(r *repositories.Repos) error) error {
	return fn(u.repos)
}

type noopCache struct{}

func (noopCache) GetLedger(context.Context, string, string) (*models.WageLedger, error) {
	return nil, errors.New("cache miss")
}
func (noopCache) SetLedger(context.Context, *models.WageLedger) error { return nil }
func (noopCache) DeleteLedger(context.Context, string, string) error  { return nil }

type fixture struct {
	workers    *memWorkers
	employers  *memEmployers
	ledgers    *memLedgers
	attendance *memAttendance
	repos      *repositories.Repos
	svc        Service
}

func newFixture() *fixture {
	f := &fixture{
		workers:    &memWorkers{byID: make(map[string]*models.Worker)},
		employers:  &memEmployers{byID: make(map[string]*models.Employer)},
		ledgers:    &memLedgers{byID: make(map[string]*models.WageLedger)},
		attendance: &memAttendance{},
	}
	f.repos = &repositories.Repos{
		Workers:    f.workers,
		Employers:  f.employers,
		Ledgers:    f.ledgers,
		Attendance: f.attendance,
	}
	f.svc = NewService(f.repos, &memUnitOfWork{repos: f.repos}, noopCache{})
	return f
}

func (f *fixture) seedEmployer(id string, maxPercentage, paydayDate int) {
	f.employers.byID[id] = &models.Employer{
		ID:       id,
		IsActive: true,
		Config: models.WithdrawalConfig{
			MaxPercentage: maxPercentage,
			MinAmount:     decimal.NewFromInt(100),
			MaxAmount:     decimal.NewFromInt(10000),
			PaydayDate:    paydayDate,
		},
	}
}

func (f *fixture) seedWorker(id, employerID, name string) {
	f.workers.byID[id] = &models.Worker{
		ID:         id,
		EmployerID: employerID,
		FullName:   name,
		IsActive:   true,
	}
}

func TestGetOrCreateActiveLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a fresh ledger for the period", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		ledger, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", "2024-06")
		require.NoError(t, err)

		assert.Equal(t, "wrk-1", ledger.WorkerID)
		assert.Equal(t, "2024-06", ledger.Month)
		assert.Equal(t, models.LedgerStatusActive, ledger.Status)
		assert.True(t, ledger.TotalEarned.IsZero())
		assert.False(t, ledger.PaydayDate.IsZero())
	})

	t.Run("returns the existing ledger on a second call", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		first, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", "2024-06")
		require.NoError(t, err)
		second, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", "2024-06")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("unknown worker", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)

		_, err := f.svc.GetOrCreateActiveLedger(ctx, "nope", "emp-1", "2024-06")
		assert.ErrorIs(t, err, ErrWorkerNotFound)
	})

	t.Run("worker of another employer", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedEmployer("emp-2", 40, 1)
		f.seedWorker("wrk-1", "emp-2", "Asha")

		_, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", "2024-06")
		assert.ErrorIs(t, err, ErrWorkerNotFound)
	})
}

func TestAccrue(t *testing.T) {
	ctx := context.Background()

	t.Run("adds earnings and recomputes available", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		ledger, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", "2024-06")
		require.NoError(t, err)

		updated, err := f.svc.Accrue(ctx, ledger.ID, decimal.NewFromInt(1000))
		require.NoError(t, err)

		assert.Equal(t, "1000.00", updated.TotalEarned.StringFixed(2))
		assert.Equal(t, "400.00", updated.AvailableBalance.StringFixed(2))
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Accrue(ctx, "any", decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("settled ledger rejected", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		ledger, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", "2024-06")
		require.NoError(t, err)
		require.NoError(t, f.ledgers.MarkSettled(ctx, ledger.ID))

		_, err = f.svc.Accrue(ctx, ledger.ID, decimal.NewFromInt(100))
		assert.ErrorIs(t, err, ErrLedgerNotActive)
	})

	t.Run("retries version conflicts then succeeds", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		ledger, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", "2024-06")
		require.NoError(t, err)

		f.ledgers.forceConflicts = 2
		updated, err := f.svc.Accrue(ctx, ledger.ID, decimal.NewFromInt(500))
		require.NoError(t, err)
		assert.Equal(t, "500.00", updated.TotalEarned.StringFixed(2))
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		ledger, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", "2024-06")
		require.NoError(t, err)

		f.ledgers.forceConflicts = maxConflictRetries
		_, err = f.svc.Accrue(ctx, ledger.ID, decimal.NewFromInt(500))
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("zero balance before any earnings", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 15)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		bal, err := f.svc.Balance(ctx, "wrk-1")
		require.NoError(t, err)

		assert.True(t, bal.TotalEarned.IsZero())
		assert.True(t, bal.AvailableToWithdraw.IsZero())
		assert.False(t, bal.NextPayday.IsZero())
	})

	t.Run("reflects accruals and withdrawals", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 15)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		month := time.Now().UTC().Format("2006-01")
		ledger, err := f.svc.GetOrCreateActiveLedger(ctx, "wrk-1", "emp-1", month)
		require.NoError(t, err)
		_, err = f.svc.Accrue(ctx, ledger.ID, decimal.NewFromInt(2000))
		require.NoError(t, err)

		bal, err := f.svc.Balance(ctx, "wrk-1")
		require.NoError(t, err)

		assert.Equal(t, "2000.00", bal.TotalEarned.StringFixed(2))
		assert.Equal(t, "800.00", bal.MaxWithdrawable.StringFixed(2))
		assert.Equal(t, "800.00", bal.AvailableToWithdraw.StringFixed(2))
		assert.Equal(t, "2000.00", bal.PaydayAmount.StringFixed(2))
	})

	t.Run("unknown worker", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Balance(ctx, "nope")
		assert.ErrorIs(t, err, ErrWorkerNotFound)
	})
}

func TestProcessAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("records entries and accrues earnings", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		processed, err := f.svc.ProcessAttendance(ctx, "emp-1", []AttendanceInput{
			{WorkerID: "wrk-1", Date: "2024-06-03", HoursWorked: 8, WagePerHour: decimal.NewFromInt(62)},
			{WorkerID: "wrk-1", Date: "2024-06-04", HoursWorked: 8, WagePerHour: decimal.NewFromInt(62)},
		})
		require.NoError(t, err)
		require.Len(t, processed, 2)
		assert.Equal(t, "496.00", processed[0].Earned.StringFixed(2))

		ledger, err := f.ledgers.GetActiveByWorkerMonth(ctx, "wrk-1", "2024-06")
		require.NoError(t, err)
		assert.Equal(t, "992.00", ledger.TotalEarned.StringFixed(2))
		assert.Equal(t, "396.80", ledger.AvailableBalance.StringFixed(2))

		entries, err := f.attendance.ListByWorkerMonth(ctx, "wrk-1", "2024-06")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("rejects out-of-range hours", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		_, err := f.svc.ProcessAttendance(ctx, "emp-1", []AttendanceInput{
			{WorkerID: "wrk-1", Date: "2024-06-03", HoursWorked: 25, WagePerHour: decimal.NewFromInt(62)},
		})
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedWorker("wrk-1", "emp-1", "Asha")

		_, err := f.svc.ProcessAttendance(ctx, "emp-1", []AttendanceInput{
			{WorkerID: "wrk-1", Date: "03/06/2024", HoursWorked: 8, WagePerHour: decimal.NewFromInt(62)},
		})
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("rejects worker of another employer", func(t *testing.T) {
		f := newFixture()
		f.seedEmployer("emp-1", 40, 1)
		f.seedEmployer("emp-2", 40, 1)
		f.seedWorker("wrk-1", "emp-2", "Asha")

		_, err := f.svc.ProcessAttendance(ctx, "emp-1", []AttendanceInput{
			{WorkerID: "wrk-1", Date: "2024-06-03", HoursWorked: 8, WagePerHour: decimal.NewFromInt(62)},
		})
		assert.ErrorIs(t, err, ErrWorkerNotFound)
	})
}
