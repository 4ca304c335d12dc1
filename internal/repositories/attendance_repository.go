package repositories

import (
	"context"
	"fmt"

	"earnedpay/internal/models"

	"gorm.io/gorm"
)

// AttendanceRepository is the record-store adapter for attendance
// entries. Entries are append-only; there is no update path.
type AttendanceRepository interface {
	Create(ctx context.Context, entry *models.AttendanceEntry) error
	ListByWorkerMonth(ctx context.Context, workerID, month string) ([]*models.AttendanceEntry, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, entry *models.AttendanceEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create attendance entry: %w", err)
	}
	return nil
}

func (r *attendanceRepository) ListByWorkerMonth(ctx context.Context, workerID, month string) ([]*models.AttendanceEntry, error) {
	var entries []*models.AttendanceEntry
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND to_char(date, 'YYYY-MM') = ?", workerID, month).
		Order("date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	return entries, nil
}
