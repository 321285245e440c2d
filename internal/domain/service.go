package domain

import "time"

// Service is a catalog entry offered by a beautician.
type Service struct {
	ID              int64     `json:"id"`
	BeauticianID    int64     `json:"beautician_id" validate:"required"`
	Name            string    `json:"name" validate:"required"`
	Description     string    `json:"description,omitempty" gorm:"type:text"`
	Price           float64   `json:"price" validate:"gte=0"`
	DurationMinutes int       `json:"duration_minutes" validate:"gt=0"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
