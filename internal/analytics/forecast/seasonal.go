package forecast

import (
	"math"
	"time"

	"github.com/airopshq/airops/internal/analytics"
)

// PeriodLayout is the label format of monthly periods ("2026-03")
const PeriodLayout = "2006-01"

// SeasonalForecaster scales the linear forecast by the calendar-month
// multiplier of the target period.
type SeasonalForecaster struct{}

// NewSeasonalForecaster creates a new seasonal forecaster
func NewSeasonalForecaster() *SeasonalForecaster {
	return &SeasonalForecaster{}
}

func init() {
	RegisterForecaster("seasonal", NewSeasonalForecaster())
}

// Name returns the algorithm name
func (f *SeasonalForecaster) Name() string {
	return "seasonal"
}

// Forecast generates a prediction using linear trend times seasonal multiplier
func (f *SeasonalForecaster) Forecast(series analytics.PeriodSeries, config Config) Result {
	ahead := periodsAhead(config)

	result := Linear(series.Values(), ahead)
	result.Method = "seasonal"
	result.TargetPeriod = targetPeriod(series, ahead)

	if result.DataPoints < MinDataPoints || result.TargetPeriod == "" {
		return result
	}

	target, _ := time.Parse(PeriodLayout, result.TargetPeriod)
	multiplier := SeasonalMultipliers(series)[int(target.Month())]

	result.SeasonalMultiplier = multiplier
	result.Forecast = math.Max(0, result.Forecast*multiplier)
	return result
}

// SeasonalMultipliers returns, for every calendar month 1..12, the ratio of that
// month's average to the overall average. Months without data, unparseable
// labels and a non-positive overall average all map to 1.0. A month whose
// average is negative gets a multiplier of 0.
func SeasonalMultipliers(series analytics.PeriodSeries) map[int]float64 {
	multipliers := make(map[int]float64, 12)
	for m := 1; m <= 12; m++ {
		multipliers[m] = 1.0
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	var total float64
	var n int

	for _, p := range series {
		month, ok := periodMonth(p.Period)
		if !ok {
			continue
		}
		sums[month] += p.Value
		counts[month]++
		total += p.Value
		n++
	}

	if n == 0 {
		return multipliers
	}
	overall := total / float64(n)
	if overall <= 0 {
		return multipliers
	}

	for month, count := range counts {
		multipliers[month] = math.Max(0, analytics.FiniteOrZero((sums[month]/float64(count))/overall))
	}

	return multipliers
}

// periodMonth extracts the calendar month from a "YYYY-MM" or "YYYY-MM-DD" label
func periodMonth(label string) (int, bool) {
	t, err := parsePeriod(label)
	if err != nil {
		return 0, false
	}
	return int(t.Month()), true
}

func parsePeriod(label string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, label)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, label)
}

// targetPeriod returns the label of the period `ahead` months after the last point
func targetPeriod(series analytics.PeriodSeries, ahead int) string {
	if len(series) == 0 {
		return ""
	}
	last, err := parsePeriod(series[len(series)-1].Period)
	if err != nil {
		return ""
	}
	first := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, ahead, 0).Format(PeriodLayout)
}
