package settlement

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"earnedpay/internal/models"
	"earnedpay/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func (m *memWorkers) ListByEmployer(context.Context, string, bool) ([]*models.Worker, error) {
	return nil, nil
}

func (m *memWorkers) CountByEmployer(context.Context, string) (int64, int64, error) {
	return 0, 0, nil
}

func (m *memWorkers) UpdateUPI(context.Context, string, string) error { return nil }

type memLedgers struct {
	mu   sync.Mutex
	byID map[string]*models.WageLedger
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
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })
	return out, nil
}

func (m *memLedgers) UpdateBalances(_ context.Context, l *models.WageLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[l.ID]
	if !ok {
		return repositories.ErrLedgerNotFound
	}
	if stored.Version != l.Version || stored.Status != models.LedgerStatusActive {
		return repositories.ErrVersionConflict
	}
	c := *l
	c.Version++
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
	return nil
}

func (m *memLedgers) SumByEmployerMonth(context.Context, string, string, string) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, nil
}

type memSettlements struct {
	mu      sync.Mutex
	records []*models.Settlement
}

func (m *memSettlements) Create(_ context.Context, s *models.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.EmployerID == s.EmployerID && existing.Month == s.Month {
			return errors.New("duplicate settlement period")
		}
	}
	c := *s
	m.records = append(m.records, &c)
	return nil
}

func (m *memSettlements) GetByEmployerMonth(_ context.Context, employerID, month string) (*models.Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.records {
		if s.EmployerID == employerID && s.Month == month {
			c := *s
			return &c, nil
		}
	}
	return nil, repositories.ErrSettlementNotFound
}

func (m *memSettlements) ListByEmployer(_ context.Context, employerID string, limit int) ([]*models.Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Settlement
	for _, s := range m.records {
		if s.EmployerID == employerID {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettledAt.After(out[j].SettledAt) })
	if len(out) > limit {
		out = out[:limit]
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
	workers     *memWorkers
	ledgers     *memLedgers
	settlements *memSettlements
	svc         Service
}

func newFixture() *fixture {
	f := &fixture{
		workers:     &memWorkers{byID: make(map[string]*models.Worker)},
		ledgers:     &memLedgers{byID: make(map[string]*models.WageLedger)},
		settlements: &memSettlements{},
	}
	repos := &repositories.Repos{
		Workers:     f.workers,
		Ledgers:     f.ledgers,
		Settlements: f.settlements,
	}
	f.svc = NewService(repos, &memUnitOfWork{repos: repos}, noopCache{})
	return f
}

func (f *fixture) seedLedger(workerID, name string, earned, withdrawn string, status string) *models.WageLedger {
	if name != "" {
		f.workers.byID[workerID] = &models.Worker{
			ID:         workerID,
			EmployerID: "emp-1",
			FullName:   name,
			IsActive:   true,
		}
	}
	l := &models.WageLedger{
		ID:             uuid.NewString(),
		WorkerID:       workerID,
		EmployerID:     "emp-1",
		Month:          "2024-06",
		TotalEarned:    decimal.RequireFromString(earned),
		TotalWithdrawn: decimal.RequireFromString(withdrawn),
		Status:         status,
		CreatedAt:      time.Now().UTC(),
	}
	f.ledgers.byID[l.ID] = l
	return l
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates and closes the period", func(t *testing.T) {
		f := newFixture()
		f.seedLedger("wrk-1", "Asha", "500", "150", models.LedgerStatusActive)
		f.seedLedger("wrk-2", "Binod", "800", "0", models.LedgerStatusActive)

		result, err := f.svc.Process(ctx, "emp-1", "2024-06")
		require.NoError(t, err)

		assert.Equal(t, 2, result.TotalWorkers)
		assert.Equal(t, "1300.00", result.TotalEarnings.StringFixed(2))
		assert.Equal(t, "150.00", result.TotalWithdrawals.StringFixed(2))
		assert.Equal(t, "1150.00", result.NetSettlement.StringFixed(2))
		assert.Equal(t, models.SettlementStatusCompleted, result.Status)

		require.Len(t, result.WorkerSettlements, 2)
		assert.Equal(t, "Asha", result.WorkerSettlements[0].WorkerName)
		assert.Equal(t, "350.00", result.WorkerSettlements[0].NetPaid.StringFixed(2))

		// Every ledger is closed; nothing is left active.
		active, err := f.ledgers.ListByEmployerMonth(ctx, "emp-1", "2024-06", models.LedgerStatusActive)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("second run is rejected", func(t *testing.T) {
		f := newFixture()
		f.seedLedger("wrk-1", "Asha", "500", "150", models.LedgerStatusActive)

		_, err := f.svc.Process(ctx, "emp-1", "2024-06")
		require.NoError(t, err)

		_, err = f.svc.Process(ctx, "emp-1", "2024-06")
		assert.ErrorIs(t, err, ErrAlreadySettled)
	})

	t.Run("nothing to settle", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Process(ctx, "emp-1", "2024-06")
		assert.ErrorIs(t, err, ErrNothingToSettle)
	})

	t.Run("settled ledgers without a record need repair", func(t *testing.T) {
		f := newFixture()
		f.seedLedger("wrk-1", "Asha", "500", "150", models.LedgerStatusSettled)

		_, err := f.svc.Process(ctx, "emp-1", "2024-06")
		assert.ErrorIs(t, err, ErrRepairRequired)
	})

	t.Run("missing worker falls back to Unknown", func(t *testing.T) {
		f := newFixture()
		f.seedLedger("wrk-ghost", "", "500", "0", models.LedgerStatusActive)

		result, err := f.svc.Process(ctx, "emp-1", "2024-06")
		require.NoError(t, err)
		require.Len(t, result.WorkerSettlements, 1)
		assert.Equal(t, "Unknown", result.WorkerSettlements[0].WorkerName)
	})

	t.Run("periods settle independently", func(t *testing.T) {
		f := newFixture()
		f.seedLedger("wrk-1", "Asha", "500", "150", models.LedgerStatusActive)

		may := &models.WageLedger{
			ID:             uuid.NewString(),
			WorkerID:       "wrk-1",
			EmployerID:     "emp-1",
			Month:          "2024-05",
			TotalEarned:    decimal.NewFromInt(400),
			TotalWithdrawn: decimal.Zero,
			Status:         models.LedgerStatusActive,
		}
		f.ledgers.byID[may.ID] = may

		_, err := f.svc.Process(ctx, "emp-1", "2024-06")
		require.NoError(t, err)

		// The other month's ledger stays active.
		active, err := f.ledgers.ListByEmployerMonth(ctx, "emp-1", "2024-05", models.LedgerStatusActive)
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	for i, month := range []string{"2024-04", "2024-05", "2024-06"} {
		f.settlements.records = append(f.settlements.records, &models.Settlement{
			ID:         uuid.NewString(),
			EmployerID: "emp-1",
			Month:      month,
			SettledAt:  time.Now().UTC().Add(time.Duration(i) * time.Hour),
			Status:     models.SettlementStatusCompleted,
		})
	}

	settlements, err := f.svc.List(ctx, "emp-1", 2)
	require.NoError(t, err)
	require.Len(t, settlements, 2)
	assert.Equal(t, "2024-06", settlements[0].Month)

	all, err := f.svc.List(ctx, "emp-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
