package repositories

import (
	"context"
	"errors"
	"fmt"

	"earnedpay/internal/models"

	"gorm.io/gorm"
)

// SettlementRepository is the record-store adapter for settlements.
// Settlements are write-once; the unique (employer, month) index backs
// the duplicate-settlement guard.
type SettlementRepository interface {
	Create(ctx context.Context, settlement *models.Settlement) error
	GetByEmployerMonth(ctx context.Context, employerID, month string) (*models.Settlement, error)
	ListByEmployer(ctx context.Context, employerID string, limit int) ([]*models.Settlement, error)
}

type settlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Create(ctx context.Context, settlement *models.Settlement) error {
	if err := r.db.WithContext(ctx).Create(settlement).Error; err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}
	return nil
}

func (r *settlementRepository) GetByEmployerMonth(ctx context.Context, employerID, month string) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.WithContext(ctx).
		Where("employer_id = ? AND month = ?", employerID, month).
		First(&settlement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementNotFound
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return &settlement, nil
}

func (r *settlementRepository) ListByEmployer(ctx context.Context, employerID string, limit int) ([]*models.Settlement, error) {
	var settlements []*models.Settlement
	err := r.db.WithContext(ctx).
		Where("employer_id = ?", employerID).
		Order("settled_at DESC").
		Limit(limit).
		Find(&settlements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return settlements, nil
}
