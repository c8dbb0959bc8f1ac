package clickhouse

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/airopshq/airops/internal/storage"
)

const completedStatus = "completed"

// Source reads revenue and feedback from ClickHouse
type Source struct {
	conn *Conn
	now  func() time.Time
}

var _ storage.Source = (*Source)(nil)

// NewSource creates a source over an open connection
func NewSource(conn *Conn) *Source {
	return &Source{conn: conn, now: time.Now}
}

// Open connects to the DSN and returns a source
func Open(ctx context.Context, dsn string) (*Source, error) {
	conn, err := NewConn(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewSource(conn), nil
}

// revenueFilter builds the WHERE clause shared by payment queries
func revenueFilter(query storage.RevenueQuery, now time.Time) (string, []any) {
	from, to := query.Window(now)
	where := " WHERE status = ? AND payment_date >= ? AND payment_date < ?"
	args := []any{completedStatus, from, to}
	if query.AirlineID > 0 {
		where += " AND airline_id = ?"
		args = append(args, uint64(query.AirlineID))
	}
	return where, args
}

// MonthlyRevenue implements storage.Source
func (s *Source) MonthlyRevenue(ctx context.Context, query storage.RevenueQuery) ([]storage.PeriodRevenue, error) {
	now := s.now()
	where, args := revenueFilter(query, now)

	rows, err := s.conn.Query(ctx, `
		SELECT formatDateTime(toStartOfMonth(payment_date), '%Y-%m') AS period,
		       sum(amount) AS revenue,
		       count() AS bookings
		FROM payments`+where+`
		GROUP BY period
		ORDER BY period`, args...)
	if err != nil {
		return nil, wrapErr("monthly revenue", err)
	}
	defer rows.Close()

	var result []storage.PeriodRevenue
	for rows.Next() {
		var (
			row      storage.PeriodRevenue
			bookings uint64
		)
		if err := rows.Scan(&row.Period, &row.Revenue, &bookings); err != nil {
			return nil, wrapErr("scan monthly revenue", err)
		}
		row.Bookings = int64(bookings)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate monthly revenue", err)
	}

	return storage.FillMonths(result, query.Labels(now)), nil
}

// ClassBreakdown implements storage.Source
func (s *Source) ClassBreakdown(ctx context.Context, query storage.RevenueQuery) ([]storage.ClassRevenue, error) {
	where, args := revenueFilter(query, s.now())

	rows, err := s.conn.Query(ctx, `
		SELECT class, sum(amount) AS revenue, count() AS bookings
		FROM payments`+where+`
		GROUP BY class
		ORDER BY class`, args...)
	if err != nil {
		return nil, wrapErr("class breakdown", err)
	}
	defer rows.Close()

	classes := []storage.ClassRevenue{}
	for rows.Next() {
		var (
			row      storage.ClassRevenue
			bookings uint64
		)
		if err := rows.Scan(&row.Class, &row.Revenue, &bookings); err != nil {
			return nil, wrapErr("scan class breakdown", err)
		}
		row.Bookings = int64(bookings)
		classes = append(classes, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate class breakdown", err)
	}
	return classes, nil
}

// BookingSummary implements storage.Source
func (s *Source) BookingSummary(ctx context.Context, query storage.RevenueQuery) (storage.BookingSummary, error) {
	where, args := revenueFilter(query, s.now())

	var (
		total      decimal.Decimal
		bookings   uint64
		passengers uint64
	)
	row := s.conn.QueryRow(ctx, `
		SELECT sum(amount), count(), uniqExact(passenger_id)
		FROM payments`+where, args...)
	if err := row.Scan(&total, &bookings, &passengers); err != nil {
		return storage.BookingSummary{}, wrapErr("booking summary", err)
	}

	return storage.BookingSummary{
		TotalRevenue:       total,
		Bookings:           int64(bookings),
		AverageTicketValue: storage.AverageTicket(total, int64(bookings)),
		Passengers:         int64(passengers),
	}, nil
}

// SearchReviews implements storage.Source
func (s *Source) SearchReviews(ctx context.Context, filter storage.ReviewFilter) ([]storage.Review, error) {
	sqlQuery, args := reviewQuery(filter)

	rows, err := s.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, wrapErr("search reviews", err)
	}
	defer rows.Close()

	reviews := []storage.Review{}
	for rows.Next() {
		var (
			r                          storage.Review
			id, airlineID, passengerID uint64
			rating                     uint8
		)
		if err := rows.Scan(&id, &airlineID, &r.AirlineName, &passengerID, &r.Passenger, &rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, wrapErr("scan review", err)
		}
		r.ID = int64(id)
		r.AirlineID = int64(airlineID)
		r.PassengerID = int64(passengerID)
		r.Rating = int(rating)
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate reviews", err)
	}
	return reviews, nil
}

// reviewQuery builds the feedback query with bound parameters only.
// positionCaseInsensitive matches literally, so no wildcard escaping is needed.
func reviewQuery(filter storage.ReviewFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`
		SELECT feedback_id, airline_id, airline_name, passenger_id, passenger, rating, comment, created_at
		FROM feedback
		WHERE 1 = 1`)
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		b.WriteString(` AND (positionCaseInsensitive(comment, ?) > 0
			OR positionCaseInsensitive(airline_name, ?) > 0
			OR positionCaseInsensitive(passenger, ?) > 0)`)
		args = append(args, search, search, search)
	}
	if filter.MinRating > 0 {
		b.WriteString(" AND rating >= ?")
		args = append(args, uint8(filter.MinRating))
	}
	if filter.AirlineID > 0 {
		b.WriteString(" AND airline_id = ?")
		args = append(args, uint64(filter.AirlineID))
	}

	b.WriteString(" ORDER BY created_at DESC, feedback_id DESC")

	if filter.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			b.WriteString(" OFFSET ?")
			args = append(args, filter.Offset)
		}
	} else if filter.Offset > 0 {
		// OFFSET requires LIMIT in ClickHouse
		b.WriteString(" LIMIT ?, 18446744073709551615")
		args = append(args, filter.Offset)
	}

	return b.String(), args
}

// Ping implements storage.Source
func (s *Source) Ping(ctx context.Context) error {
	if err := s.conn.Ping(ctx); err != nil {
		return wrapErr("ping", err)
	}
	return nil
}

// Close implements storage.Source
func (s *Source) Close() error {
	return s.conn.Close()
}
