package domain

import "time"

// CustomerPreferences holds one customer's notification opt-in settings.
// Created lazily with defaults on first access.
type CustomerPreferences struct {
	ID                   int64     `json:"id"`
	CustomerID           int64     `json:"customer_id" gorm:"uniqueIndex"`
	WhatsappOptIn        bool      `json:"whatsapp_opt_in"`
	WhatsappNumber       string    `json:"whatsapp_number,omitempty"`
	ReceiveOffers        bool      `json:"receive_offers"`
	ReceiveReminders     bool      `json:"receive_reminders"`
	PreferredContactTime string    `json:"preferred_contact_time,omitempty"` // morning, afternoon, evening
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preferences row created on first access.
// Opt-in defaults to true; the contact number stays empty until the customer
// provides one, which keeps them ineligible for sends.
func DefaultPreferences(customerID int64) *CustomerPreferences {
	return &CustomerPreferences{
		CustomerID:       customerID,
		WhatsappOptIn:    true,
		ReceiveOffers:    true,
		ReceiveReminders: true,
	}
}
