// Package analytics provides common types and statistical primitives for revenue
// analytics, including growth, forecasting, anomaly detection and recommendations.
package analytics

// PeriodPoint represents the aggregate value of a single reporting period.
// This is the common type used across all analytics packages (growth, forecast, anomaly, etc.)
type PeriodPoint struct {
	Period string  // Period label, e.g. "2026-03"
	Value  float64 // Aggregate for the period (revenue, bookings, ...)
}

// PeriodSeries is a chronological collection of period points, index 0 = earliest.
type PeriodSeries []PeriodPoint

// Values extracts just the values from the series
func (ps PeriodSeries) Values() []float64 {
	values := make([]float64, len(ps))
	for i, p := range ps {
		values[i] = p.Value
	}
	return values
}

// Periods extracts just the period labels from the series
func (ps PeriodSeries) Periods() []string {
	periods := make([]string, len(ps))
	for i, p := range ps {
		periods[i] = p.Period
	}
	return periods
}

// Len returns the number of periods
func (ps PeriodSeries) Len() int {
	return len(ps)
}

// Latest returns up to n values ordered most-recent-first.
func (ps PeriodSeries) Latest(n int) []float64 {
	return MostRecentFirst(ps.Values(), n)
}

// MostRecentFirst returns up to n trailing values of a chronological series,
// reversed so that index 0 is the most recent one. The input is not modified.
func MostRecentFirst(values []float64, n int) []float64 {
	if n <= 0 || len(values) == 0 {
		return []float64{}
	}
	if n > len(values) {
		n = len(values)
	}

	result := make([]float64, n)
	for i := 0; i < n; i++ {
		result[i] = values[len(values)-1-i]
	}
	return result
}

// Tail returns the last n values of a chronological series (still earliest-first).
func Tail(values []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n > len(values) {
		n = len(values)
	}
	tail := make([]float64, n)
	copy(tail, values[len(values)-n:])
	return tail
}
