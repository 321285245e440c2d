package retention

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"beautybook/internal/domain"
	"beautybook/internal/metrics"
	"beautybook/internal/modules/whatsapp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ServiceConfig carries the orchestrator's tunables.
type ServiceConfig struct {
	OfferTTL    time.Duration
	SendPacing  time.Duration
	LinkBaseURL string
}

// Service coordinates the offer flow: opt-in policy, recommendation pick,
// pricing, persistence, dispatch and outcome recording.
type Service struct {
	analyzer    *Analyzer
	recommender *Recommender
	users       UserStore
	beauticians BeauticianStore
	catalog     CatalogStore
	prefs       PreferencesStore
	offers      OfferStore
	msgs        MessageLog
	dispatcher  Dispatcher

	cfg     ServiceConfig
	log     zerolog.Logger
	limiter *rate.Limiter

	now func() time.Time
}

func NewService(
	analyzer *Analyzer,
	recommender *Recommender,
	users UserStore,
	beauticians BeauticianStore,
	catalog CatalogStore,
	prefs PreferencesStore,
	offers OfferStore,
	msgs MessageLog,
	dispatcher Dispatcher,
	cfg ServiceConfig,
	log zerolog.Logger,
) *Service {
	return &Service{
		analyzer:    analyzer,
		recommender: recommender,
		users:       users,
		beauticians: beauticians,
		catalog:     catalog,
		prefs:       prefs,
		offers:      offers,
		msgs:        msgs,
		dispatcher:  dispatcher,
		cfg:         cfg,
		log:         log,
		limiter:     rate.NewLimiter(rate.Every(cfg.SendPacing), 1),
		now:         time.Now,
	}
}

// AnalyzeCustomerPattern exposes the analyzer for introspection callers.
func (s *Service) AnalyzeCustomerPattern(ctx context.Context, customerID int64) (*BehaviorProfile, error) {
	return s.analyzer.AnalyzeCustomerPattern(ctx, customerID)
}

// GetCustomerOffers returns the customer's offer history, newest first.
func (s *Service) GetCustomerOffers(ctx context.Context, customerID int64) ([]domain.Offer, error) {
	return s.offers.GetByCustomerID(ctx, customerID)
}

// GenerateAndSendOffer runs the single-customer flow. Every expected
// business rejection comes back as SendResult{Success: false}; only
// infrastructure failures return an error.
func (s *Service) GenerateAndSendOffer(ctx context.Context, customerID int64) (SendResult, error) {
	prefs, err := s.loadOrCreatePreferences(ctx, customerID)
	if err != nil {
		return SendResult{}, err
	}
	if !prefs.WhatsappOptIn || !prefs.ReceiveOffers {
		return s.reject(customerID, reasonOptedOut, "opted_out"), nil
	}
	if prefs.WhatsappNumber == "" {
		return s.reject(customerID, reasonNoWhatsappNumber, "no_contact"), nil
	}

	recs, err := s.recommender.GenerateOfferRecommendations(ctx, customerID)
	if err != nil {
		return SendResult{}, err
	}
	if len(recs) == 0 {
		return s.reject(customerID, reasonNoOffers, "no_recommendations"), nil
	}
	top := recs[0]

	customer, err := s.users.GetByID(ctx, customerID)
	if err != nil {
		return SendResult{}, err
	}
	beautician, err := s.beauticians.GetByID(ctx, top.BeauticianID)
	if err != nil {
		return SendResult{}, err
	}
	var owner *domain.User
	if beautician != nil {
		owner, err = s.users.GetByID(ctx, beautician.UserID)
		if err != nil {
			return SendResult{}, err
		}
	}
	if customer == nil || beautician == nil || owner == nil {
		return s.reject(customerID, reasonMissingEntities, "missing_entities"), nil
	}

	svc, err := s.catalog.GetByID(ctx, top.ServiceID)
	if err != nil {
		return SendResult{}, err
	}
	if svc == nil {
		return s.reject(customerID, reasonServiceNotFound, "service_not_found"), nil
	}

	discounted := math.Round(svc.Price * (1 - float64(top.DiscountPercent)/100))
	now := s.now()

	offer := &domain.Offer{
		CustomerID:      customerID,
		BeauticianID:    beautician.ID,
		ServiceID:       svc.ID,
		OfferType:       top.OfferType,
		DiscountPercent: top.DiscountPercent,
		OriginalPrice:   svc.Price,
		DiscountedPrice: discounted,
		Status:          domain.OfferPending,
		LinkToken:       uuid.NewString(),
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.cfg.OfferTTL),
	}
	offer.Message = renderOfferMessage(customer.FirstName, owner.FirstName, svc.Name, top.DiscountPercent, svc.Price, discounted, s.offerLink(offer.LinkToken))

	if err := s.offers.Create(ctx, offer); err != nil {
		return SendResult{}, err
	}

	start := time.Now()
	res := s.dispatcher.SendMessage(ctx, whatsapp.Message{To: prefs.WhatsappNumber, Body: offer.Message})
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	s.recordDispatch(ctx, offer, prefs.WhatsappNumber, res)

	if !res.Success {
		metrics.OffersRejected.WithLabelValues("dispatch_failed").Inc()
		// the offer row stays pending on purpose: a failed send leaves an
		// auditable record for retry or inspection
		return SendResult{Success: false, Message: res.Error, OfferID: offer.ID}, nil
	}

	moved, err := s.offers.TransitionStatus(ctx, offer.ID, domain.OfferPending, domain.OfferSent)
	if err != nil {
		return SendResult{}, err
	}
	if !moved {
		s.log.Warn().Int64("offer_id", offer.ID).Msg("offer already transitioned by another writer")
	}

	metrics.OffersSent.Inc()
	s.log.Info().
		Int64("customer_id", customerID).
		Int64("offer_id", offer.ID).
		Str("urgency", string(top.Urgency)).
		Int("discount", top.DiscountPercent).
		Str("provider", res.Provider).
		Msg("offer sent")

	return SendResult{Success: true, Message: "Offer sent successfully", OfferID: offer.ID}, nil
}

// ProcessAutomatedOffers scans all customers and applies the single-customer
// flow to each qualifying one, strictly sequentially with a minimum
// inter-send delay to stay under provider rate limits. Per-customer errors
// are counted, never propagated.
func (s *Service) ProcessAutomatedOffers(ctx context.Context) (BatchResult, error) {
	metrics.BatchRuns.Inc()

	ids, err := s.recommender.FindCustomersForOffers(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	s.log.Info().Int("candidates", len(ids)).Msg("automated offer batch started")

	var result BatchResult
	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}

		out, err := s.GenerateAndSendOffer(ctx, id)
		if err != nil {
			result.Failed++
			s.log.Error().Int64("customer_id", id).Err(err).Msg("offer send failed")
			continue
		}
		if !out.Success {
			result.Failed++
			s.log.Info().Int64("customer_id", id).Str("reason", out.Message).Msg("offer send rejected")
			continue
		}
		result.Sent++
	}

	s.log.Info().Int("sent", result.Sent).Int("failed", result.Failed).Msg("automated offer batch finished")
	return result, nil
}

// MarkOfferClicked advances the offer behind a deep-link token to clicked.
func (s *Service) MarkOfferClicked(ctx context.Context, token string) (*domain.Offer, error) {
	return s.advanceByToken(ctx, token, domain.OfferClicked)
}

// MarkOfferBooked advances the offer behind a deep-link token to booked.
func (s *Service) MarkOfferBooked(ctx context.Context, token string) (*domain.Offer, error) {
	return s.advanceByToken(ctx, token, domain.OfferBooked)
}

func (s *Service) advanceByToken(ctx context.Context, token string, to domain.OfferStatus) (*domain.Offer, error) {
	offer, err := s.offers.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	if !domain.CanTransition(offer.Status, to) {
		return nil, ErrInvalidTransition
	}

	moved, err := s.offers.TransitionStatus(ctx, offer.ID, offer.Status, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrInvalidTransition
	}

	offer.Status = to
	return offer, nil
}

// loadOrCreatePreferences lazily creates the defaults row on first access.
// A concurrent creator loses the unique-index race; re-read in that case.
func (s *Service) loadOrCreatePreferences(ctx context.Context, customerID int64) (*domain.CustomerPreferences, error) {
	prefs, err := s.prefs.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		return prefs, nil
	}

	prefs = domain.DefaultPreferences(customerID)
	if err := s.prefs.Create(ctx, prefs); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return s.prefs.GetByCustomerID(ctx, customerID)
		}
		return nil, err
	}
	return prefs, nil
}

func (s *Service) reject(customerID int64, message, reasonClass string) SendResult {
	metrics.OffersRejected.WithLabelValues(reasonClass).Inc()
	s.log.Info().Int64("customer_id", customerID).Str("reason", message).Msg("offer send skipped")
	return SendResult{Success: false, Message: message}
}

func (s *Service) recordDispatch(ctx context.Context, offer *domain.Offer, to string, res whatsapp.Result) {
	provider := res.Provider
	if provider == "" {
		provider = "none"
	}
	outcome := "failed"
	status := "failed"
	if res.Success {
		outcome = "sent"
		status = "sent"
	}
	metrics.DispatchAttempts.WithLabelValues(provider, outcome).Inc()

	entry := &domain.WhatsappMessage{
		OfferID:           &offer.ID,
		CustomerID:        offer.CustomerID,
		ToNumber:          to,
		Provider:          res.Provider,
		Body:              offer.Message,
		Status:            status,
		ProviderMessageID: res.MessageID,
		ErrorDetail:       res.Error,
		CreatedAt:         s.now(),
	}
	if err := s.msgs.Create(ctx, entry); err != nil {
		s.log.Error().Int64("offer_id", offer.ID).Err(err).Msg("failed to record dispatch log entry")
	}
}

func (s *Service) offerLink(token string) string {
	return fmt.Sprintf("%s/offers/%s", s.cfg.LinkBaseURL, token)
}

func renderOfferMessage(customerName, beauticianName, serviceName string, discount int, original, discounted float64, link string) string {
	return fmt.Sprintf(
		"Hi %s! It's %s from BeautyBook. Your next %s comes with %d%% off: %.0f instead of %.0f. Book here: %s",
		customerName, beauticianName, serviceName, discount, discounted, original, link,
	)
}
