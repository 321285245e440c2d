package repository

import (
	"context"
	"time"

	"beautybook/internal/domain"

	"gorm.io/gorm"
)

// WhatsappMessageRepository is the append-only dispatch audit trail.
// There are deliberately no update or delete methods.
type WhatsappMessageRepository struct {
	db *gorm.DB
}

func NewWhatsappMessageRepository(db *gorm.DB) *WhatsappMessageRepository {
	return &WhatsappMessageRepository{db: db}
}

type whatsappMessageModel struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	OfferID           *int64    `gorm:"column:offer_id;index"`
	CustomerID        int64     `gorm:"column:customer_id;index"`
	ToNumber          string    `gorm:"column:to_number"`
	Provider          *string   `gorm:"column:provider"`
	Body              string    `gorm:"column:body"`
	Status            string    `gorm:"column:status"`
	ProviderMessageID *string   `gorm:"column:provider_message_id"`
	ErrorDetail       *string   `gorm:"column:error_detail"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (whatsappMessageModel) TableName() string { return "whatsapp_messages" }

func toDomainWhatsappMessage(m whatsappMessageModel) *domain.WhatsappMessage {
	var provider, messageID, errDetail string
	if m.Provider != nil {
		provider = *m.Provider
	}
	if m.ProviderMessageID != nil {
		messageID = *m.ProviderMessageID
	}
	if m.ErrorDetail != nil {
		errDetail = *m.ErrorDetail
	}

	return &domain.WhatsappMessage{
		ID:                m.ID,
		OfferID:           m.OfferID,
		CustomerID:        m.CustomerID,
		ToNumber:          m.ToNumber,
		Provider:          provider,
		Body:              m.Body,
		Status:            m.Status,
		ProviderMessageID: messageID,
		ErrorDetail:       errDetail,
		CreatedAt:         m.CreatedAt,
	}
}

func toWhatsappMessageModel(w *domain.WhatsappMessage) whatsappMessageModel {
	strOrNil := func(s string) *string {
		if s == "" {
			return nil
		}
		v := s
		return &v
	}

	return whatsappMessageModel{
		ID:                w.ID,
		OfferID:           w.OfferID,
		CustomerID:        w.CustomerID,
		ToNumber:          w.ToNumber,
		Provider:          strOrNil(w.Provider),
		Body:              w.Body,
		Status:            w.Status,
		ProviderMessageID: strOrNil(w.ProviderMessageID),
		ErrorDetail:       strOrNil(w.ErrorDetail),
		CreatedAt:         w.CreatedAt,
	}
}

func (r *WhatsappMessageRepository) Create(ctx context.Context, w *domain.WhatsappMessage) error {
	m := toWhatsappMessageModel(w)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*w = *toDomainWhatsappMessage(m)
	return nil
}
