// Package memory implements storage.Source over in-process records.
// It backs local development and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/airopshq/airops/internal/storage"
)

// Payment is a settled ticket payment
type Payment struct {
	ID          int64
	AirlineID   int64
	PassengerID int64
	Class       string
	Amount      decimal.Decimal
	PaidAt      time.Time
}

// Source holds payments and reviews in memory
type Source struct {
	mu       sync.RWMutex
	payments []Payment
	reviews  []storage.Review
	closed   bool

	now func() time.Time
}

var _ storage.Source = (*Source)(nil)

// New creates an empty source
func New() *Source {
	return &Source{now: time.Now}
}

// SetClock replaces the clock used to resolve an open-ended window
func (s *Source) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddPayments appends payments
func (s *Source) AddPayments(payments ...Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, payments...)
}

// AddReviews appends reviews
func (s *Source) AddReviews(reviews ...storage.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, reviews...)
}

// MonthlyRevenue implements storage.Source
func (s *Source) MonthlyRevenue(ctx context.Context, query storage.RevenueQuery) ([]storage.PeriodRevenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	byPeriod := make(map[string]storage.PeriodRevenue)
	s.eachPayment(query, now, func(p Payment) {
		label := p.PaidAt.UTC().Format(storage.PeriodLayout)
		row, ok := byPeriod[label]
		if !ok {
			row = storage.PeriodRevenue{Period: label, Revenue: decimal.Zero}
		}
		row.Revenue = row.Revenue.Add(p.Amount)
		row.Bookings++
		byPeriod[label] = row
	})

	rows := make([]storage.PeriodRevenue, 0, len(byPeriod))
	for _, row := range byPeriod {
		rows = append(rows, row)
	}
	return storage.FillMonths(rows, query.Labels(now)), nil
}

// ClassBreakdown implements storage.Source
func (s *Source) ClassBreakdown(ctx context.Context, query storage.RevenueQuery) ([]storage.ClassRevenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	byClass := make(map[string]*storage.ClassRevenue)
	s.eachPayment(query, s.now(), func(p Payment) {
		row, ok := byClass[p.Class]
		if !ok {
			row = &storage.ClassRevenue{Class: p.Class, Revenue: decimal.Zero}
			byClass[p.Class] = row
		}
		row.Revenue = row.Revenue.Add(p.Amount)
		row.Bookings++
	})

	classes := make([]storage.ClassRevenue, 0, len(byClass))
	for _, row := range byClass {
		classes = append(classes, *row)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Class < classes[j].Class })
	return classes, nil
}

// BookingSummary implements storage.Source
func (s *Source) BookingSummary(ctx context.Context, query storage.RevenueQuery) (storage.BookingSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return storage.BookingSummary{}, err
	}

	summary := storage.BookingSummary{TotalRevenue: decimal.Zero}
	passengers := make(map[int64]struct{})
	s.eachPayment(query, s.now(), func(p Payment) {
		summary.TotalRevenue = summary.TotalRevenue.Add(p.Amount)
		summary.Bookings++
		passengers[p.PassengerID] = struct{}{}
	})
	summary.Passengers = int64(len(passengers))
	summary.AverageTicketValue = storage.AverageTicket(summary.TotalRevenue, summary.Bookings)
	return summary, nil
}

// SearchReviews implements storage.Source
func (s *Source) SearchReviews(ctx context.Context, filter storage.ReviewFilter) ([]storage.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]storage.Review, 0)
	for _, r := range s.reviews {
		if filter.MinRating > 0 && r.Rating < filter.MinRating {
			continue
		}
		if filter.AirlineID > 0 && r.AirlineID != filter.AirlineID {
			continue
		}
		if needle != "" && !containsFold(needle, r.Comment, r.AirlineName, r.Passenger) {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []storage.Review{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Ping implements storage.Source
func (s *Source) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx)
}

// Close implements storage.Source
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// check must be called with the read lock held
func (s *Source) check(ctx context.Context) error {
	if s.closed {
		return storage.ErrClosed
	}
	return ctx.Err()
}

// eachPayment visits payments inside the query window. Caller holds the lock.
func (s *Source) eachPayment(query storage.RevenueQuery, now time.Time, fn func(Payment)) {
	from, to := query.Window(now)
	for _, p := range s.payments {
		if query.AirlineID > 0 && p.AirlineID != query.AirlineID {
			continue
		}
		paid := p.PaidAt.UTC()
		if paid.Before(from) || !paid.Before(to) {
			continue
		}
		fn(p)
	}
}

func containsFold(needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
