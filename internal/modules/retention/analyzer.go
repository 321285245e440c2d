package retention

import (
	"context"
	"math"
	"sort"
	"time"

	"beautybook/internal/domain"
)

// FavoriteBeautician is the provider the customer books most often.
type FavoriteBeautician struct {
	BeauticianID int64 `json:"beautician_id"`
	Bookings     int   `json:"bookings"`
}

// ServiceStat summarizes one service's recurrence for a customer.
// MeanIntervalDays is 0 when the service was booked only once.
type ServiceStat struct {
	ServiceID        int64  `json:"service_id"`
	ServiceName      string `json:"service_name"`
	Count            int    `json:"count"`
	MeanIntervalDays int    `json:"mean_interval_days"`
}

// BehaviorProfile is a customer's derived booking-behavior profile.
// It is recomputed on every analysis call and never persisted.
type BehaviorProfile struct {
	CustomerID         int64               `json:"customer_id"`
	FavoriteBeautician *FavoriteBeautician `json:"favorite_beautician"`
	FrequentServices   []ServiceStat       `json:"frequent_services"`
	LastBookingDate    *time.Time          `json:"last_booking_date"`
	PredictedNextDate  *time.Time          `json:"predicted_next_date"`
	TotalBookings      int                 `json:"total_bookings"`
	AverageSpend       int                 `json:"average_spend"`
}

// Analyzer derives behavior profiles from raw booking history.
type Analyzer struct {
	bookings BookingStore

	// includeCancelled keeps cancelled bookings in interval inference,
	// matching the historical behavior of the offer engine.
	includeCancelled bool
}

func NewAnalyzer(bookings BookingStore, includeCancelled bool) *Analyzer {
	return &Analyzer{
		bookings:         bookings,
		includeCancelled: includeCancelled,
	}
}

// AnalyzeCustomerPattern builds the customer's behavior profile. A customer
// with zero bookings yields an empty profile, not an error. Store errors
// propagate unchanged; there is no partial profile.
func (a *Analyzer) AnalyzeCustomerPattern(ctx context.Context, customerID int64) (*BehaviorProfile, error) {
	bookings, err := a.bookings.GetByCustomerID(ctx, customerID, a.includeCancelled)
	if err != nil {
		return nil, err
	}

	profile := &BehaviorProfile{
		CustomerID:       customerID,
		FrequentServices: []ServiceStat{},
	}
	if len(bookings) == 0 {
		return profile, nil
	}

	profile.TotalBookings = len(bookings)
	profile.FavoriteBeautician = favoriteBeautician(bookings)
	profile.FrequentServices = serviceStats(bookings)
	profile.AverageSpend = averageSpend(bookings)

	last := lastBookingDate(bookings)
	profile.LastBookingDate = &last

	if top := profile.FrequentServices[0]; top.MeanIntervalDays > 0 {
		predicted := last.AddDate(0, 0, top.MeanIntervalDays)
		profile.PredictedNextDate = &predicted
	}

	return profile, nil
}

// favoriteBeautician tallies bookings per provider; on a tie the first
// provider to reach the max count in booking order wins.
func favoriteBeautician(bookings []domain.Booking) *FavoriteBeautician {
	counts := make(map[int64]int)
	best := &FavoriteBeautician{}
	for _, b := range bookings {
		counts[b.BeauticianID]++
		if counts[b.BeauticianID] > best.Bookings {
			best.BeauticianID = b.BeauticianID
			best.Bookings = counts[b.BeauticianID]
		}
	}
	return best
}

// serviceStats groups bookings by service and computes the mean whole-day
// gap between consecutive bookings of the same service. Single-booking
// services carry no recurrence signal and get interval 0. Stats come back
// sorted descending by occurrence count, first-seen order on ties.
func serviceStats(bookings []domain.Booking) []ServiceStat {
	order := make([]int64, 0)
	groups := make(map[int64][]domain.Booking)
	names := make(map[int64]string)

	for _, b := range bookings {
		if _, seen := groups[b.ServiceID]; !seen {
			order = append(order, b.ServiceID)
		}
		groups[b.ServiceID] = append(groups[b.ServiceID], b)
		if names[b.ServiceID] == "" {
			names[b.ServiceID] = b.ServiceName
		}
	}

	stats := make([]ServiceStat, 0, len(order))
	for _, id := range order {
		group := groups[id]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ScheduledAt.Before(group[j].ScheduledAt)
		})

		stats = append(stats, ServiceStat{
			ServiceID:        id,
			ServiceName:      names[id],
			Count:            len(group),
			MeanIntervalDays: meanIntervalDays(group),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	return stats
}

func meanIntervalDays(group []domain.Booking) int {
	if len(group) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(group); i++ {
		sum += group[i].ScheduledAt.Sub(group[i-1].ScheduledAt).Hours() / 24
	}
	return int(math.Round(sum / float64(len(group)-1)))
}

// averageSpend is the mean amount over every fetched booking, rounded to
// whole currency units. No status filter is applied here.
func averageSpend(bookings []domain.Booking) int {
	var sum float64
	for _, b := range bookings {
		sum += b.TotalAmount
	}
	return int(math.Round(sum / float64(len(bookings))))
}

func lastBookingDate(bookings []domain.Booking) time.Time {
	last := bookings[0].ScheduledAt
	for _, b := range bookings[1:] {
		if b.ScheduledAt.After(last) {
			last = b.ScheduledAt
		}
	}
	return last
}
