package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID           int64         `json:"id"`
	CustomerID   int64         `json:"customer_id" validate:"required"`
	BeauticianID int64         `json:"beautician_id" validate:"required"`
	ServiceID    int64         `json:"service_id" validate:"required"`
	ScheduledAt  time.Time     `json:"scheduled_at" validate:"required"`
	Status       BookingStatus `json:"status"`
	TotalAmount  float64       `json:"total_amount" validate:"gte=0"`
	Notes        string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Populated via join in the repository, not a bookings column.
	ServiceName string `json:"service_name,omitempty" gorm:"-"`
}
