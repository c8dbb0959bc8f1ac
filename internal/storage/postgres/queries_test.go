package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/airopshq/airops/internal/storage"
)

func TestRevenueFilter(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	where, args := revenueFilter(storage.RevenueQuery{Periods: 3}, now)
	assert.NotContains(t, where, "airline_id")
	assert.Len(t, args, 3)
	assert.Equal(t, completedStatus, args[0])
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), args[1])
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), args[2])

	where, args = revenueFilter(storage.RevenueQuery{Periods: 3, AirlineID: 7}, now)
	assert.Contains(t, where, "f.airline_id = $4")
	assert.Equal(t, int64(7), args[3])
}

func TestReviewQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   storage.ReviewFilter
		contains []string
		args     []interface{}
	}{
		{
			name:   "no filters",
			filter: storage.ReviewFilter{},
			args:   []interface{}{},
		},
		{
			name:     "search only",
			filter:   storage.ReviewFilter{Search: "  crew  "},
			contains: []string{"fb.comment ILIKE $1", "a.name ILIKE $1"},
			args:     []interface{}{"%crew%"},
		},
		{
			name:     "all filters",
			filter:   storage.ReviewFilter{Search: "50%_off", MinRating: 3, AirlineID: 2, Limit: 10, Offset: 20},
			contains: []string{"ILIKE $1", "fb.rating >= $2", "fb.airline_id = $3", "LIMIT $4", "OFFSET $5"},
			args:     []interface{}{`%50\%\_off%`, 3, int64(2), 10, 20},
		},
		{
			name:     "rating and limit",
			filter:   storage.ReviewFilter{MinRating: 4, Limit: 5},
			contains: []string{"fb.rating >= $1", "LIMIT $2"},
			args:     []interface{}{4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := reviewQuery(tt.filter)
			for _, fragment := range tt.contains {
				assert.Contains(t, query, fragment)
			}
			assert.Equal(t, tt.args, args)
			assert.Contains(t, query, "ORDER BY fb.created_at DESC")
		})
	}
}

func TestReviewQuery_InjectionStaysInArgs(t *testing.T) {
	payload := "x' OR '1'='1"
	query, args := reviewQuery(storage.ReviewFilter{Search: payload})

	assert.NotContains(t, query, payload)
	assert.Equal(t, []interface{}{"%" + payload + "%"}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}

func TestWrapErr(t *testing.T) {
	pgxMissing := &pgconn.PgError{Code: "42P01", Message: `relation "payment" does not exist`}
	assert.ErrorIs(t, wrapErr("query", pgxMissing), storage.ErrSchemaMissing)

	pqMissing := &pq.Error{Code: "42P01", Message: `relation "feedback" does not exist`}
	err := wrapErr("query", pqMissing)
	assert.ErrorIs(t, err, storage.ErrSchemaMissing)
	assert.ErrorIs(t, err, pqMissing)

	other := errors.New("syntax error")
	err = wrapErr("query", other)
	assert.NotErrorIs(t, err, storage.ErrSchemaMissing)
	assert.NotErrorIs(t, err, storage.ErrUnavailable)
	assert.ErrorIs(t, err, other)
}
