package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earnedpay/internal/models"

	"gorm.io/gorm"
)

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return nil
}

func (r *withdrawalRepository) GetByID(ctx context.Context, id string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return &w, nil
}

func (r *withdrawalRepository) MarkCompleted(ctx context.Context, id, transactionID string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ? AND status IN ?", id,
			[]string{models.WithdrawalStatusPending, models.WithdrawalStatusProcessing}).
		Updates(map[string]interface{}{
			"status":         models.WithdrawalStatusCompleted,
			"transaction_id": transactionID,
			"completed_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete withdrawal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *withdrawalRepository) MarkFailed(ctx context.Context, id, reason string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ? AND status IN ?", id,
			[]string{models.WithdrawalStatusPending, models.WithdrawalStatusProcessing}).
		Updates(map[string]interface{}{
			"status":         models.WithdrawalStatusFailed,
			"failure_reason": reason,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to fail withdrawal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *withdrawalRepository) ListByWorker(ctx context.Context, workerID string, limit int) ([]*models.Withdrawal, error) {
	var withdrawals []*models.Withdrawal
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("requested_at DESC").
		Limit(limit).
		Find(&withdrawals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return withdrawals, nil
}
