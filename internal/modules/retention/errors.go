package retention

import "errors"

var (
	ErrOfferNotFound     = errors.New("offer not found")
	ErrInvalidTransition = errors.New("invalid offer status transition")
)

// Rejection reasons returned to callers as SendResult messages. These are
// expected business outcomes, never errors.
const (
	reasonOptedOut         = "Customer opted out of offers"
	reasonNoWhatsappNumber = "Customer has no WhatsApp number"
	reasonNoOffers         = "No suitable offers found for customer"
	reasonMissingEntities  = "Missing customer or beautician data"
	reasonServiceNotFound  = "Service not found"
)
