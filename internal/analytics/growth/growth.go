// Package growth computes period-over-period growth rates and classifies
// revenue trends into fixed qualitative buckets.
package growth

import (
	"github.com/airopshq/airops/internal/analytics"
)

// Trend represents the qualitative direction of a series
type Trend string

const (
	TrendStrongPositive   Trend = "strong_positive"
	TrendPositive         Trend = "positive"
	TrendStable           Trend = "stable"
	TrendNegative         Trend = "negative"
	TrendStrongNegative   Trend = "strong_negative"
	TrendInsufficientData Trend = "insufficient_data"
)

// Trend cut points, in percent. These are fixed design constants.
const (
	StrongThreshold = 10.0
	MildThreshold   = 2.0
)

// MinTrendPoints is the minimum series length for ClassifyTrend
const MinTrendPoints = 3

// Result compares the current period against the previous one
type Result struct {
	Current           float64 `json:"current"`
	Previous          float64 `json:"previous"`
	GrowthRatePercent float64 `json:"growth_rate_percent"`
	Trend             Trend   `json:"trend"`
}

// Rate returns (current-previous)/previous*100.
// When previous is 0 the rate is 100 if current > 0 and 0 otherwise.
func Rate(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return analytics.FiniteOrZero((current - previous) / previous * 100)
}

// Compare builds a growth result for two consecutive periods
func Compare(current, previous float64) Result {
	rate := Rate(current, previous)
	return Result{
		Current:           current,
		Previous:          previous,
		GrowthRatePercent: rate,
		Trend:             classifyChange(rate),
	}
}

// ClassifyTrend buckets the end-to-end change of a chronological series.
// Series shorter than MinTrendPoints yield TrendInsufficientData.
func ClassifyTrend(series []float64) Trend {
	if len(series) < MinTrendPoints {
		return TrendInsufficientData
	}
	return classifyChange(Rate(series[len(series)-1], series[0]))
}

// Rates returns the period-over-period growth rate for every consecutive pair.
// The result has len(series)-1 entries (empty for fewer than 2 points).
func Rates(series []float64) []float64 {
	if len(series) < 2 {
		return []float64{}
	}

	rates := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		rates[i-1] = Rate(series[i], series[i-1])
	}
	return rates
}

// classifyChange maps a percent change onto a trend bucket
func classifyChange(change float64) Trend {
	switch {
	case change > StrongThreshold:
		return TrendStrongPositive
	case change > MildThreshold:
		return TrendPositive
	case change < -StrongThreshold:
		return TrendStrongNegative
	case change < -MildThreshold:
		return TrendNegative
	default:
		return TrendStable
	}
}
