package repository

import (
	"context"
	"errors"
	"time"

	"beautybook/internal/domain"

	"gorm.io/gorm"
)

type PreferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

type preferencesModel struct {
	ID                   int64     `gorm:"column:id;primaryKey"`
	CustomerID           int64     `gorm:"column:customer_id;uniqueIndex:idx_prefs_customer"`
	WhatsappOptIn        bool      `gorm:"column:whatsapp_opt_in"`
	WhatsappNumber       *string   `gorm:"column:whatsapp_number"`
	ReceiveOffers        bool      `gorm:"column:receive_offers"`
	ReceiveReminders     bool      `gorm:"column:receive_reminders"`
	PreferredContactTime *string   `gorm:"column:preferred_contact_time"`
	CreatedAt            time.Time `gorm:"column:created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (preferencesModel) TableName() string { return "customer_notification_preferences" }

func toDomainPreferences(m preferencesModel) *domain.CustomerPreferences {
	var number, contactTime string
	if m.WhatsappNumber != nil {
		number = *m.WhatsappNumber
	}
	if m.PreferredContactTime != nil {
		contactTime = *m.PreferredContactTime
	}

	return &domain.CustomerPreferences{
		ID:                   m.ID,
		CustomerID:           m.CustomerID,
		WhatsappOptIn:        m.WhatsappOptIn,
		WhatsappNumber:       number,
		ReceiveOffers:        m.ReceiveOffers,
		ReceiveReminders:     m.ReceiveReminders,
		PreferredContactTime: contactTime,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func toPreferencesModel(p *domain.CustomerPreferences) preferencesModel {
	var number, contactTime *string
	if p.WhatsappNumber != "" {
		v := p.WhatsappNumber
		number = &v
	}
	if p.PreferredContactTime != "" {
		v := p.PreferredContactTime
		contactTime = &v
	}

	return preferencesModel{
		ID:                   p.ID,
		CustomerID:           p.CustomerID,
		WhatsappOptIn:        p.WhatsappOptIn,
		WhatsappNumber:       number,
		ReceiveOffers:        p.ReceiveOffers,
		ReceiveReminders:     p.ReceiveReminders,
		PreferredContactTime: contactTime,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// GetByCustomerID returns nil, nil when the customer has no preferences row yet.
func (r *PreferencesRepository) GetByCustomerID(ctx context.Context, customerID int64) (*domain.CustomerPreferences, error) {
	var m preferencesModel
	tx := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainPreferences(m), nil
}

func (r *PreferencesRepository) Create(ctx context.Context, p *domain.CustomerPreferences) error {
	m := toPreferencesModel(p)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainPreferences(m)
	return nil
}
