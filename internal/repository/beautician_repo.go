package repository

import (
	"context"
	"errors"
	"time"

	"beautybook/internal/domain"

	"gorm.io/gorm"
)

type BeauticianRepository struct {
	db *gorm.DB
}

func NewBeauticianRepository(db *gorm.DB) *BeauticianRepository {
	return &BeauticianRepository{db: db}
}

type beauticianModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	UserID         int64     `gorm:"column:user_id"`
	Bio            *string   `gorm:"column:bio"`
	CommissionRate *float64  `gorm:"column:commission_rate"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (beauticianModel) TableName() string { return "beauticians" }

func toDomainBeautician(m beauticianModel) *domain.Beautician {
	var bio string
	if m.Bio != nil {
		bio = *m.Bio
	}

	return &domain.Beautician{
		ID:             m.ID,
		UserID:         m.UserID,
		Bio:            bio,
		CommissionRate: m.CommissionRate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// GetByID returns nil, nil when the beautician does not exist.
func (r *BeauticianRepository) GetByID(ctx context.Context, id int64) (*domain.Beautician, error) {
	var m beauticianModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainBeautician(m), nil
}
