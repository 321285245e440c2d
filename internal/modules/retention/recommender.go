package retention

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"beautybook/internal/domain"

	"github.com/rs/zerolog"
)

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

var urgencyRank = map[Urgency]int{
	UrgencyHigh:   0,
	UrgencyMedium: 1,
	UrgencyLow:    2,
}

// OfferRecommendation is one urgency-scored discount suggestion for a
// customer and service. Recommendations are ephemeral.
type OfferRecommendation struct {
	CustomerID      int64            `json:"customer_id"`
	BeauticianID    int64            `json:"beautician_id"`
	ServiceID       int64            `json:"service_id"`
	ServiceName     string           `json:"service_name"`
	Reason          string           `json:"reason"`
	Urgency         Urgency          `json:"urgency"`
	DiscountPercent int              `json:"discount_percent"`
	OfferType       domain.OfferType `json:"offer_type"`
	PredictedDate   time.Time        `json:"predicted_date"`
}

// missingLastBookingDays stands in for both date deltas when the profile has
// no last booking date, keeping the customer out of the date-window tiers and
// in the overdue branch.
const missingLastBookingDays = 999

type tierInput struct {
	daysSinceLast      int
	daysUntilPredicted int
	meanIntervalDays   int
}

type tierOutcome struct {
	urgency   Urgency
	discount  int
	offerType domain.OfferType
	reason    func(serviceName string) string
}

type tierRule struct {
	name    string
	matches func(tierInput) bool
	outcome tierOutcome
}

// tierRules is the urgency tiering table, evaluated in order with first
// match winning. The precedence is load-bearing: a customer who is both
// "upcoming" and "overdue" gets the upcoming tier's smaller discount.
func tierRules(overdueGraceDays int) []tierRule {
	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}

	return []tierRule{
		{
			name: "due_now",
			matches: func(in tierInput) bool {
				return abs(in.daysUntilPredicted) <= 3
			},
			outcome: tierOutcome{
				urgency:   UrgencyHigh,
				discount:  15,
				offerType: domain.OfferIntervalReminder,
				reason: func(s string) string {
					return fmt.Sprintf("%s is due! Book now with 15%% off.", s)
				},
			},
		},
		{
			name: "upcoming",
			matches: func(in tierInput) bool {
				return abs(in.daysUntilPredicted) <= 7
			},
			outcome: tierOutcome{
				urgency:   UrgencyMedium,
				discount:  12,
				offerType: domain.OfferIntervalReminder,
				reason: func(s string) string {
					return fmt.Sprintf("Upcoming %s appointment — book ahead with 12%% off!", s)
				},
			},
		},
		{
			name: "overdue",
			matches: func(in tierInput) bool {
				return in.daysSinceLast > in.meanIntervalDays+overdueGraceDays
			},
			outcome: tierOutcome{
				urgency:   UrgencyHigh,
				discount:  20,
				offerType: domain.OfferLoyaltyDiscount,
				reason: func(s string) string {
					return fmt.Sprintf("We miss you! Get 20%% off your next %s.", s)
				},
			},
		},
		{
			name:    "routine",
			matches: func(tierInput) bool { return true },
			outcome: tierOutcome{
				urgency:   UrgencyLow,
				discount:  10,
				offerType: domain.OfferIntervalReminder,
				reason: func(s string) string {
					return fmt.Sprintf("Time for your regular %s appointment!", s)
				},
			},
		},
	}
}

// Recommender turns behavior profiles into ranked discount recommendations.
type Recommender struct {
	analyzer *Analyzer
	users    UserStore
	log      zerolog.Logger

	minIntervalDays  int
	maxIntervalDays  int
	overdueGraceDays int
	rules            []tierRule

	now func() time.Time
}

func NewRecommender(analyzer *Analyzer, users UserStore, minInterval, maxInterval, overdueGrace int, log zerolog.Logger) *Recommender {
	return &Recommender{
		analyzer:         analyzer,
		users:            users,
		log:              log,
		minIntervalDays:  minInterval,
		maxIntervalDays:  maxInterval,
		overdueGraceDays: overdueGrace,
		rules:            tierRules(overdueGrace),
		now:              time.Now,
	}
}

// GenerateOfferRecommendations produces one recommendation per service whose
// mean interval falls inside the frequent-service band, sorted high to low
// urgency. A customer without a detectable pattern gets an empty list.
func (r *Recommender) GenerateOfferRecommendations(ctx context.Context, customerID int64) ([]OfferRecommendation, error) {
	profile, err := r.analyzer.AnalyzeCustomerPattern(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if profile.FavoriteBeautician == nil || len(profile.FrequentServices) == 0 {
		return []OfferRecommendation{}, nil
	}

	now := r.now()
	recs := make([]OfferRecommendation, 0, len(profile.FrequentServices))
	for _, stat := range profile.FrequentServices {
		if stat.MeanIntervalDays < r.minIntervalDays || stat.MeanIntervalDays > r.maxIntervalDays {
			continue
		}

		in := tierInput{
			daysSinceLast:      missingLastBookingDays,
			daysUntilPredicted: missingLastBookingDays,
			meanIntervalDays:   stat.MeanIntervalDays,
		}
		var predicted time.Time
		if profile.LastBookingDate != nil {
			in.daysSinceLast = wholeDays(now.Sub(*profile.LastBookingDate))
			predicted = profile.LastBookingDate.AddDate(0, 0, stat.MeanIntervalDays)
			in.daysUntilPredicted = wholeDays(predicted.Sub(now))
		}

		out := r.evaluate(in)
		recs = append(recs, OfferRecommendation{
			CustomerID:      customerID,
			BeauticianID:    profile.FavoriteBeautician.BeauticianID,
			ServiceID:       stat.ServiceID,
			ServiceName:     stat.ServiceName,
			Reason:          out.reason(stat.ServiceName),
			Urgency:         out.urgency,
			DiscountPercent: out.discount,
			OfferType:       out.offerType,
			PredictedDate:   predicted,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return urgencyRank[recs[i].Urgency] < urgencyRank[recs[j].Urgency]
	})
	return recs, nil
}

func (r *Recommender) evaluate(in tierInput) tierOutcome {
	for _, rule := range r.rules {
		if rule.matches(in) {
			return rule.outcome
		}
	}
	// unreachable: the routine rule always matches
	return r.rules[len(r.rules)-1].outcome
}

// FindCustomersForOffers returns the ids of customers with at least one
// high or medium recommendation. Low-only customers are left to manual
// sends. Per-customer analysis errors are logged and skipped so one bad
// record cannot empty the batch.
func (r *Recommender) FindCustomersForOffers(ctx context.Context) ([]int64, error) {
	customers, err := r.users.GetCustomers(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0)
	for _, c := range customers {
		recs, err := r.GenerateOfferRecommendations(ctx, c.ID)
		if err != nil {
			r.log.Error().Int64("customer_id", c.ID).Err(err).Msg("recommendation scan failed")
			continue
		}
		for _, rec := range recs {
			if rec.Urgency == UrgencyHigh || rec.Urgency == UrgencyMedium {
				ids = append(ids, c.ID)
				break
			}
		}
	}
	return ids, nil
}

func wholeDays(d time.Duration) int {
	return int(math.Round(d.Hours() / 24))
}
