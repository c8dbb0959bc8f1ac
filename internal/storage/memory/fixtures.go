package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/airopshq/airops/internal/storage"
)

var demoAirlines = map[int64]string{
	1: "Aurora Air",
	2: "Blue Meridian",
}

var demoComments = []struct {
	rating  int
	comment string
}{
	{5, "Friendly crew and an early arrival"},
	{4, "Comfortable seats, food was average"},
	{2, "Delayed departure with no announcement"},
	{3, "Boarding was slow but the flight was fine"},
	{1, "Lost baggage and unhelpful support"},
	{5, "Business lounge was excellent"},
	{4, "Good value for the price"},
	{2, "Cramped legroom in economy"},
}

// NewDemo returns a source seeded with deterministic demo data covering the
// given number of months up to and including the month of now.
func NewDemo(now time.Time, months int) *Source {
	s := New()
	s.SetClock(func() time.Time { return now })
	Seed(s, now, months)
	return s
}

// Seed adds demo payments and reviews. The data is a function of its
// arguments only.
func Seed(s *Source, now time.Time, months int) {
	if months < 1 {
		months = 1
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	var payments []Payment
	var id int64
	add := func(month time.Time, day int, airline, passenger int64, class string, amount int64) {
		id++
		payments = append(payments, Payment{
			ID:          id,
			AirlineID:   airline,
			PassengerID: passenger,
			Class:       class,
			Amount:      decimal.NewFromInt(amount),
			PaidAt:      month.AddDate(0, 0, day).Add(10 * time.Hour),
		})
	}

	for m := 0; m < months; m++ {
		month := start.AddDate(0, m, 0)
		// Gentle growth with a summer peak
		seasonal := int64(0)
		if month.Month() >= time.June && month.Month() <= time.August {
			seasonal = 1200
		}
		for i := 0; i < 12; i++ {
			airline := int64(1 + i%2)
			add(month, i, airline, int64(100+i), "economy", 4500+int64(m)*60+seasonal)
		}
		for i := 0; i < 2; i++ {
			add(month, 14+i, int64(1+i%2), int64(200+i), "business", 16000+int64(m)*150)
		}
		if m%3 == 0 {
			add(month, 20, 1, 300, "first", 38000)
		}
	}
	s.AddPayments(payments...)

	reviews := make([]storage.Review, 0, len(demoComments))
	for i, c := range demoComments {
		airline := int64(1 + i%2)
		reviews = append(reviews, storage.Review{
			ID:          int64(i + 1),
			AirlineID:   airline,
			AirlineName: demoAirlines[airline],
			PassengerID: int64(100 + i),
			Passenger:   "Passenger " + string(rune('A'+i)),
			Rating:      c.rating,
			Comment:     c.comment,
			CreatedAt:   start.AddDate(0, 0, 7*i),
		})
	}
	s.AddReviews(reviews...)
}
