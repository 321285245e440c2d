package repository

import (
	"context"
	"errors"
	"time"

	"beautybook/internal/domain"

	"gorm.io/gorm"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

type offerModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	CustomerID      int64      `gorm:"column:customer_id;index"`
	BeauticianID    int64      `gorm:"column:beautician_id"`
	ServiceID       int64      `gorm:"column:service_id"`
	OfferType       string     `gorm:"column:offer_type"`
	DiscountPercent int        `gorm:"column:discount_percent"`
	OriginalPrice   float64    `gorm:"column:original_price"`
	DiscountedPrice float64    `gorm:"column:discounted_price"`
	Message         string     `gorm:"column:message"`
	Status          string     `gorm:"column:status"`
	LinkToken       string     `gorm:"column:link_token;uniqueIndex"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	ExpiresAt       time.Time  `gorm:"column:expires_at"`
	ClickedAt       *time.Time `gorm:"column:clicked_at"`
	BookedAt        *time.Time `gorm:"column:booked_at"`
}

func (offerModel) TableName() string { return "offers" }

func toDomainOffer(m offerModel) *domain.Offer {
	return &domain.Offer{
		ID:              m.ID,
		CustomerID:      m.CustomerID,
		BeauticianID:    m.BeauticianID,
		ServiceID:       m.ServiceID,
		OfferType:       domain.OfferType(m.OfferType),
		DiscountPercent: m.DiscountPercent,
		OriginalPrice:   m.OriginalPrice,
		DiscountedPrice: m.DiscountedPrice,
		Message:         m.Message,
		Status:          domain.OfferStatus(m.Status),
		LinkToken:       m.LinkToken,
		CreatedAt:       m.CreatedAt,
		ExpiresAt:       m.ExpiresAt,
		ClickedAt:       m.ClickedAt,
		BookedAt:        m.BookedAt,
	}
}

func toOfferModel(o *domain.Offer) offerModel {
	return offerModel{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		BeauticianID:    o.BeauticianID,
		ServiceID:       o.ServiceID,
		OfferType:       string(o.OfferType),
		DiscountPercent: o.DiscountPercent,
		OriginalPrice:   o.OriginalPrice,
		DiscountedPrice: o.DiscountedPrice,
		Message:         o.Message,
		Status:          string(o.Status),
		LinkToken:       o.LinkToken,
		CreatedAt:       o.CreatedAt,
		ExpiresAt:       o.ExpiresAt,
		ClickedAt:       o.ClickedAt,
		BookedAt:        o.BookedAt,
	}
}

func (r *OfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	m := toOfferModel(o)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*o = *toDomainOffer(m)
	return nil
}

// TransitionStatus moves an offer from one status to another with an
// optimistic guard: the update only applies while the stored status still
// matches from. Returns false when another writer got there first.
func (r *OfferRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.OfferStatus) (bool, error) {
	updates := map[string]any{"status": string(to)}
	now := time.Now()
	switch to {
	case domain.OfferClicked:
		updates["clicked_at"] = &now
	case domain.OfferBooked:
		updates["booked_at"] = &now
	}

	tx := r.db.WithContext(ctx).
		Model(&offerModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// GetByToken returns nil, nil when no offer carries the deep-link token.
func (r *OfferRepository) GetByToken(ctx context.Context, token string) (*domain.Offer, error) {
	var m offerModel
	tx := r.db.WithContext(ctx).Where("link_token = ?", token).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainOffer(m), nil
}

func (r *OfferRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]domain.Offer, error) {
	var rows []offerModel
	tx := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Offer, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainOffer(m))
	}
	return out, nil
}
