package domain

import "time"

type OfferType string

const (
	OfferIntervalReminder OfferType = "interval_reminder"
	OfferLoyaltyDiscount  OfferType = "loyalty_discount"
)

type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferSent      OfferStatus = "sent"
	OfferDelivered OfferStatus = "delivered"
	OfferRead      OfferStatus = "read"
	OfferClicked   OfferStatus = "clicked"
	OfferBooked    OfferStatus = "booked"
	OfferExpired   OfferStatus = "expired"
)

// offerStatusRank orders the offer lifecycle. Transitions may only move
// forward; expired is reachable from any non-terminal state.
var offerStatusRank = map[OfferStatus]int{
	OfferPending:   0,
	OfferSent:      1,
	OfferDelivered: 2,
	OfferRead:      3,
	OfferClicked:   4,
	OfferBooked:    5,
	OfferExpired:   6,
}

// CanTransition reports whether moving from one offer status to another
// keeps the lifecycle monotonic.
func CanTransition(from, to OfferStatus) bool {
	fr, ok := offerStatusRank[from]
	if !ok {
		return false
	}
	tr, ok := offerStatusRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

// Offer is a persisted, time-bounded discounted-price proposal sent to one
// customer for one service.
type Offer struct {
	ID              int64       `json:"id"`
	CustomerID      int64       `json:"customer_id" validate:"required"`
	BeauticianID    int64       `json:"beautician_id" validate:"required"`
	ServiceID       int64       `json:"service_id" validate:"required"`
	OfferType       OfferType   `json:"offer_type"`
	DiscountPercent int         `json:"discount_percent" validate:"gte=0,lte=100"`
	OriginalPrice   float64     `json:"original_price" validate:"gte=0"`
	DiscountedPrice float64     `json:"discounted_price" validate:"gte=0"`
	Message         string      `json:"message" gorm:"type:text"`
	Status          OfferStatus `json:"status"`
	LinkToken       string      `json:"link_token"`
	CreatedAt       time.Time   `json:"created_at"`
	ExpiresAt       time.Time   `json:"expires_at"`
	ClickedAt       *time.Time  `json:"clicked_at,omitempty"`
	BookedAt        *time.Time  `json:"booked_at,omitempty"`
}
