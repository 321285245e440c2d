package retention

import (
	"context"

	"beautybook/internal/domain"
	"beautybook/internal/modules/whatsapp"
)

// BookingStore provides the booking history feeding pattern analysis.
// Rows come back ordered ascending by scheduled time with the service name
// joined in.
type BookingStore interface {
	GetByCustomerID(ctx context.Context, customerID int64, includeCancelled bool) ([]domain.Booking, error)
}

// UserStore resolves customers, beautician owner accounts and the customer list.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetCustomers(ctx context.Context) ([]domain.User, error)
}

type BeauticianStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Beautician, error)
}

type CatalogStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type PreferencesStore interface {
	GetByCustomerID(ctx context.Context, customerID int64) (*domain.CustomerPreferences, error)
	Create(ctx context.Context, p *domain.CustomerPreferences) error
}

type OfferStore interface {
	Create(ctx context.Context, o *domain.Offer) error
	TransitionStatus(ctx context.Context, id int64, from, to domain.OfferStatus) (bool, error)
	GetByToken(ctx context.Context, token string) (*domain.Offer, error)
	GetByCustomerID(ctx context.Context, customerID int64) ([]domain.Offer, error)
}

// MessageLog is the append-only dispatch audit trail.
type MessageLog interface {
	Create(ctx context.Context, w *domain.WhatsappMessage) error
}

// Dispatcher delivers a rendered message through the configured channels.
type Dispatcher interface {
	SendMessage(ctx context.Context, m whatsapp.Message) whatsapp.Result
}
