package repositories

import (
	"context"

	"earnedpay/internal/models"
)

// WithdrawalRepository is the record-store adapter for withdrawal
// transactions. MarkCompleted and MarkFailed are status-conditioned:
// they only apply while the record is non-terminal, so a withdrawal
// transitions to a terminal state exactly once.
type WithdrawalRepository interface {
	Create(ctx context.Context, w *models.Withdrawal) error
	GetByID(ctx context.Context, id string) (*models.Withdrawal, error)
	MarkCompleted(ctx context.Context, id, transactionID string) error
	MarkFailed(ctx context.Context, id, reason string) error
	ListByWorker(ctx context.Context, workerID string, limit int) ([]*models.Withdrawal, error)
}
