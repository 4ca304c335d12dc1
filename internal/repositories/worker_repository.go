package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earnedpay/internal/models"

	"gorm.io/gorm"
)

// WorkerRepository is the record-store adapter for workers.
type WorkerRepository interface {
	Create(ctx context.Context, worker *models.Worker) error
	GetByID(ctx context.Context, id string) (*models.Worker, error)
	ListByEmployer(ctx context.Context, employerID string, activeOnly bool) ([]*models.Worker, error)
	CountByEmployer(ctx context.Context, employerID string) (total, active int64, err error)
	UpdateUPI(ctx context.Context, workerID, upiID string) error
}

type workerRepository struct {
	db *gorm.DB
}

func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) Create(ctx context.Context, worker *models.Worker) error {
	if err := r.db.WithContext(ctx).Create(worker).Error; err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	return nil
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*models.Worker, error) {
	var worker models.Worker
	if err := r.db.WithContext(ctx).First(&worker, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return &worker, nil
}

func (r *workerRepository) ListByEmployer(ctx context.Context, employerID string, activeOnly bool) ([]*models.Worker, error) {
	query := r.db.WithContext(ctx).Where("employer_id = ?", employerID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var workers []*models.Worker
	if err := query.Order("joined_at ASC").Find(&workers).Error; err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

func (r *workerRepository) CountByEmployer(ctx context.Context, employerID string) (int64, int64, error) {
	var total, active int64
	err := r.db.WithContext(ctx).Model(&models.Worker{}).
		Where("employer_id = ?", employerID).Count(&total).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count workers: %w", err)
	}
	err = r.db.WithContext(ctx).Model(&models.Worker{}).
		Where("employer_id = ? AND is_active = ?", employerID, true).Count(&active).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count active workers: %w", err)
	}
	return total, active, nil
}

func (r *workerRepository) UpdateUPI(ctx context.Context, workerID, upiID string) error {
	result := r.db.WithContext(ctx).Model(&models.Worker{}).
		Where("id = ?", workerID).
		Updates(map[string]interface{}{
			"upi_id":     upiID,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update worker UPI: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWorkerNotFound
	}
	return nil
}
