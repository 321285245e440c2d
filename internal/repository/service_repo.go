package repository

import (
	"context"
	"errors"
	"time"

	"beautybook/internal/domain"

	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type serviceModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	BeauticianID    int64     `gorm:"column:beautician_id"`
	Name            string    `gorm:"column:name"`
	Description     *string   `gorm:"column:description"`
	Price           float64   `gorm:"column:price"`
	DurationMinutes int       `gorm:"column:duration_minutes"`
	IsActive        bool      `gorm:"column:is_active"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (serviceModel) TableName() string { return "services" }

func toDomainService(m serviceModel) *domain.Service {
	var desc string
	if m.Description != nil {
		desc = *m.Description
	}

	return &domain.Service{
		ID:              m.ID,
		BeauticianID:    m.BeauticianID,
		Name:            m.Name,
		Description:     desc,
		Price:           m.Price,
		DurationMinutes: m.DurationMinutes,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// GetByID returns nil, nil when the service does not exist.
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var m serviceModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainService(m), nil
}
