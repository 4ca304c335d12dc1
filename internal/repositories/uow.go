package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repos bundles every repository over one store handle. Inside a unit
// of work the bundle is bound to the transaction.
type Repos struct {
	Workers     WorkerRepository
	Employers   EmployerRepository
	Ledgers     LedgerRepository
	Attendance  AttendanceRepository
	Withdrawals WithdrawalRepository
	Settlements SettlementRepository
}

// NewRepos builds the bundle over a gorm handle.
func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Workers:     NewWorkerRepository(db),
		Employers:   NewEmployerRepository(db),
		Ledgers:     NewLedgerRepository(db),
		Attendance:  NewAttendanceRepository(db),
		Withdrawals: NewWithdrawalRepository(db),
		Settlements: NewSettlementRepository(db),
	}
}

// UnitOfWork runs a function against the repositories atomically:
// either every write inside fn commits or none do.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r *Repos) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(r *Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}
