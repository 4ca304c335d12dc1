package repositories

import (
	"context"
	"errors"
	"fmt"

	"earnedpay/internal/models"

	"gorm.io/gorm"
)

// EmployerRepository is the record-store adapter for employers. The
// engine reads employer withdrawal config here; config mutation belongs
// to the employer-management surface.
type EmployerRepository interface {
	Create(ctx context.Context, employer *models.Employer) error
	GetByID(ctx context.Context, id string) (*models.Employer, error)
	Update(ctx context.Context, employer *models.Employer) error
}

type employerRepository struct {
	db *gorm.DB
}

func NewEmployerRepository(db *gorm.DB) EmployerRepository {
	return &employerRepository{db: db}
}

func (r *employerRepository) Create(ctx context.Context, employer *models.Employer) error {
	if err := r.db.WithContext(ctx).Create(employer).Error; err != nil {
		return fmt.Errorf("failed to create employer: %w", err)
	}
	return nil
}

func (r *employerRepository) GetByID(ctx context.Context, id string) (*models.Employer, error) {
	var employer models.Employer
	if err := r.db.WithContext(ctx).First(&employer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployerNotFound
		}
		return nil, fmt.Errorf("failed to get employer: %w", err)
	}
	return &employer, nil
}

func (r *employerRepository) Update(ctx context.Context, employer *models.Employer) error {
	if err := r.db.WithContext(ctx).Save(employer).Error; err != nil {
		return fmt.Errorf("failed to update employer: %w", err)
	}
	return nil
}
