package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/airopshq/airops/internal/storage"
)

// completedStatus marks payments that count as revenue
const completedStatus = "completed"

// revenueFilter builds the shared WHERE clause for payment queries
func revenueFilter(query storage.RevenueQuery, now time.Time) (string, []interface{}) {
	from, to := query.Window(now)

	where := "WHERE p.status = $1 AND p.payment_date >= $2 AND p.payment_date < $3"
	args := []interface{}{completedStatus, from, to}
	if query.AirlineID > 0 {
		where += " AND f.airline_id = $4"
		args = append(args, query.AirlineID)
	}

	return where, args
}

const paymentJoins = `
	FROM payment p
	JOIN ticket t ON t.ticket_id = p.ticket_id
	JOIN flight f ON f.flight_id = t.flight_id
`

// MonthlyRevenue implements storage.Source
func (s *Source) MonthlyRevenue(ctx context.Context, query storage.RevenueQuery) ([]storage.PeriodRevenue, error) {
	now := s.now()
	where, args := revenueFilter(query, now)

	sqlQuery := `
	SELECT to_char(date_trunc('month', p.payment_date AT TIME ZONE 'UTC'), 'YYYY-MM') AS period,
	       COALESCE(SUM(p.amount), 0) AS revenue,
	       COUNT(*) AS bookings` + paymentJoins + where + `
	GROUP BY 1
	ORDER BY 1`

	var rows []storage.PeriodRevenue
	if err := s.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return nil, wrapErr("monthly revenue", err)
	}

	return storage.FillMonths(rows, query.Labels(now)), nil
}

// ClassBreakdown implements storage.Source
func (s *Source) ClassBreakdown(ctx context.Context, query storage.RevenueQuery) ([]storage.ClassRevenue, error) {
	where, args := revenueFilter(query, s.now())

	sqlQuery := `
	SELECT t.class AS class,
	       COALESCE(SUM(p.amount), 0) AS revenue,
	       COUNT(*) AS bookings` + paymentJoins + where + `
	GROUP BY t.class
	ORDER BY t.class`

	classes := []storage.ClassRevenue{}
	if err := s.db.SelectContext(ctx, &classes, sqlQuery, args...); err != nil {
		return nil, wrapErr("class breakdown", err)
	}
	return classes, nil
}

// BookingSummary implements storage.Source
func (s *Source) BookingSummary(ctx context.Context, query storage.RevenueQuery) (storage.BookingSummary, error) {
	where, args := revenueFilter(query, s.now())

	sqlQuery := `
	SELECT COALESCE(SUM(p.amount), 0) AS total_revenue,
	       COUNT(*) AS bookings,
	       COUNT(DISTINCT t.passenger_id) AS passengers` + paymentJoins + where

	var summary storage.BookingSummary
	if err := s.db.GetContext(ctx, &summary, sqlQuery, args...); err != nil {
		return storage.BookingSummary{}, wrapErr("booking summary", err)
	}

	summary.AverageTicketValue = storage.AverageTicket(summary.TotalRevenue, summary.Bookings)
	return summary, nil
}

// SearchReviews implements storage.Source
func (s *Source) SearchReviews(ctx context.Context, filter storage.ReviewFilter) ([]storage.Review, error) {
	sqlQuery, args := reviewQuery(filter)

	reviews := []storage.Review{}
	if err := s.db.SelectContext(ctx, &reviews, sqlQuery, args...); err != nil {
		return nil, wrapErr("search reviews", err)
	}
	return reviews, nil
}

// reviewQuery builds a parameterized feedback query. User input never
// reaches the SQL text.
func reviewQuery(filter storage.ReviewFilter) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(`
	SELECT fb.feedback_id, fb.airline_id, a.name AS airline_name, fb.passenger_id,
	       pp.first_name || ' ' || pp.last_name AS passenger,
	       fb.rating, fb.comment, fb.created_at
	FROM feedback fb
	JOIN airline a ON a.airline_id = fb.airline_id
	JOIN passenger_profile pp ON pp.passenger_id = fb.passenger_id
	WHERE 1=1`)

	args := []interface{}{}
	argIndex := 1

	if search := strings.TrimSpace(filter.Search); search != "" {
		fmt.Fprintf(&b, ` AND (fb.comment ILIKE $%[1]d OR a.name ILIKE $%[1]d OR (pp.first_name || ' ' || pp.last_name) ILIKE $%[1]d)`, argIndex)
		args = append(args, "%"+escapeLike(search)+"%")
		argIndex++
	}

	if filter.MinRating > 0 {
		fmt.Fprintf(&b, " AND fb.rating >= $%d", argIndex)
		args = append(args, filter.MinRating)
		argIndex++
	}

	if filter.AirlineID > 0 {
		fmt.Fprintf(&b, " AND fb.airline_id = $%d", argIndex)
		args = append(args, filter.AirlineID)
		argIndex++
	}

	b.WriteString(" ORDER BY fb.created_at DESC, fb.feedback_id DESC")

	if filter.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	return b.String(), args
}

// escapeLike escapes LIKE wildcards so the search matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
