package repository

import (
	"context"
	"time"

	"beautybook/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	CustomerID   int64     `gorm:"column:customer_id"`
	BeauticianID int64     `gorm:"column:beautician_id"`
	ServiceID    int64     `gorm:"column:service_id"`
	ScheduledAt  time.Time `gorm:"column:scheduled_at"`
	Status       string    `gorm:"column:status"`
	TotalAmount  float64   `gorm:"column:total_amount"`
	Notes        *string   `gorm:"column:notes"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`

	ServiceName string `gorm:"column:service_name;->"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}

	return &domain.Booking{
		ID:           m.ID,
		CustomerID:   m.CustomerID,
		BeauticianID: m.BeauticianID,
		ServiceID:    m.ServiceID,
		ScheduledAt:  m.ScheduledAt,
		Status:       domain.BookingStatus(m.Status),
		TotalAmount:  m.TotalAmount,
		Notes:        notes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		ServiceName:  m.ServiceName,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var notes *string
	if b.Notes != "" {
		v := b.Notes
		notes = &v
	}

	return bookingModel{
		ID:           b.ID,
		CustomerID:   b.CustomerID,
		BeauticianID: b.BeauticianID,
		ServiceID:    b.ServiceID,
		ScheduledAt:  b.ScheduledAt,
		Status:       string(b.Status),
		TotalAmount:  b.TotalAmount,
		Notes:        notes,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

// GetByCustomerID returns the customer's bookings ordered ascending by
// scheduled time, with the service name joined in. Cancelled bookings are
// kept or dropped per includeCancelled.
func (r *BookingRepository) GetByCustomerID(ctx context.Context, customerID int64, includeCancelled bool) ([]domain.Booking, error) {
	q := r.db.WithContext(ctx).
		Table("bookings").
		Select("bookings.*, services.name AS service_name").
		Joins("LEFT JOIN services ON services.id = bookings.service_id").
		Where("bookings.customer_id = ?", customerID).
		Order("bookings.scheduled_at ASC")

	if !includeCancelled {
		q = q.Where("bookings.status <> ?", string(domain.BookingCancelled))
	}

	var rows []bookingModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
