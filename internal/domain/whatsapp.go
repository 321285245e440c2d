package domain

import "time"

// WhatsappMessage is one send attempt in the dispatch audit trail.
// Rows are append-only and never mutated after creation.
type WhatsappMessage struct {
	ID                int64     `json:"id"`
	OfferID           *int64    `json:"offer_id,omitempty"`
	CustomerID        int64     `json:"customer_id"`
	ToNumber          string    `json:"to_number"`
	Provider          string    `json:"provider,omitempty"`
	Body              string    `json:"body" gorm:"type:text"`
	Status            string    `json:"status"` // sent, failed
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	ErrorDetail       string    `json:"error_detail,omitempty" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
}
