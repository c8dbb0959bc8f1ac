// Package storage defines the read-side data source used by the analytics services.
//
// Backends live in sub-packages (postgres, clickhouse, memory) and are selected
// by the driver package from configuration.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodLayout is the label format of a monthly period
const PeriodLayout = "2006-01"

var (
	// ErrSchemaMissing is returned when a required table does not exist
	ErrSchemaMissing = errors.New("storage: schema missing")
	// ErrUnavailable is returned when the backend cannot be reached
	ErrUnavailable = errors.New("storage: source unavailable")
	// ErrClosed is returned by a source after Close
	ErrClosed = errors.New("storage: source closed")
)

// Source is the read interface every backend implements
type Source interface {
	// MonthlyRevenue returns one row per month of the window, chronological.
	// Months without payments are present with zero revenue.
	MonthlyRevenue(ctx context.Context, query RevenueQuery) ([]PeriodRevenue, error)

	// ClassBreakdown returns revenue per fare class, ordered by class name
	ClassBreakdown(ctx context.Context, query RevenueQuery) ([]ClassRevenue, error)

	// BookingSummary returns totals over the window
	BookingSummary(ctx context.Context, query RevenueQuery) (BookingSummary, error)

	// SearchReviews returns passenger feedback matching the filter, newest first
	SearchReviews(ctx context.Context, filter ReviewFilter) ([]Review, error)

	Ping(ctx context.Context) error
	Close() error
}

// RevenueQuery selects the reporting window
type RevenueQuery struct {
	Periods   int       // number of trailing months, including the month of Until
	AirlineID int64     // 0 = all airlines
	Until     time.Time // zero = now
}

// PeriodRevenue is the revenue of one calendar month
type PeriodRevenue struct {
	Period   string          `json:"period" db:"period"`
	Revenue  decimal.Decimal `json:"revenue" db:"revenue"`
	Bookings int64           `json:"bookings" db:"bookings"`
}

// ClassRevenue is the revenue of one fare class
type ClassRevenue struct {
	Class    string          `json:"class" db:"class"`
	Revenue  decimal.Decimal `json:"revenue" db:"revenue"`
	Bookings int64           `json:"bookings" db:"bookings"`
}

// BookingSummary aggregates payments over the window
type BookingSummary struct {
	TotalRevenue       decimal.Decimal `json:"total_revenue" db:"total_revenue"`
	Bookings           int64           `json:"bookings" db:"bookings"`
	AverageTicketValue decimal.Decimal `json:"average_ticket_value" db:"average_ticket_value"`
	Passengers         int64           `json:"passengers" db:"passengers"`
}

// Review is one passenger feedback entry
type Review struct {
	ID          int64     `json:"id" db:"feedback_id"`
	AirlineID   int64     `json:"airline_id" db:"airline_id"`
	AirlineName string    `json:"airline_name" db:"airline_name"`
	PassengerID int64     `json:"passenger_id" db:"passenger_id"`
	Passenger   string    `json:"passenger" db:"passenger"`
	Rating      int       `json:"rating" db:"rating"`
	Comment     string    `json:"comment" db:"comment"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ReviewFilter narrows SearchReviews. Zero values disable a filter.
type ReviewFilter struct {
	Search    string // case-insensitive substring of comment, airline or passenger name
	MinRating int
	AirlineID int64
	Limit     int
	Offset    int
}

// Window returns the half-open time range [from, to) covered by the query,
// aligned to calendar months in UTC.
func (q RevenueQuery) Window(now time.Time) (from, to time.Time) {
	until := q.Until
	if until.IsZero() {
		until = now
	}
	until = until.UTC()

	periods := q.Periods
	if periods < 1 {
		periods = 1
	}

	monthStart := time.Date(until.Year(), until.Month(), 1, 0, 0, 0, 0, time.UTC)
	from = monthStart.AddDate(0, -(periods - 1), 0)
	to = monthStart.AddDate(0, 1, 0)
	return from, to
}

// Labels returns the period labels of the window, chronological
func (q RevenueQuery) Labels(now time.Time) []string {
	from, to := q.Window(now)
	var labels []string
	for m := from; m.Before(to); m = m.AddDate(0, 1, 0) {
		labels = append(labels, m.Format(PeriodLayout))
	}
	return labels
}

// FillMonths aligns sparse rows onto the full window. Rows outside the
// window are dropped; missing months get zero revenue.
func FillMonths(rows []PeriodRevenue, labels []string) []PeriodRevenue {
	byPeriod := make(map[string]PeriodRevenue, len(rows))
	for _, row := range rows {
		byPeriod[row.Period] = row
	}

	filled := make([]PeriodRevenue, len(labels))
	for i, label := range labels {
		if row, ok := byPeriod[label]; ok {
			filled[i] = row
			continue
		}
		filled[i] = PeriodRevenue{Period: label, Revenue: decimal.Zero}
	}
	return filled
}

// AverageTicket divides total by bookings, rounded to cents. Zero bookings yield zero.
func AverageTicket(total decimal.Decimal, bookings int64) decimal.Decimal {
	if bookings <= 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(bookings), 2)
}
