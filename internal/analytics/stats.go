package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of the series.
// An empty series has a mean of 0. Finite values whose sum overflows still
// average correctly; NaN or infinite inputs give 0.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	if m := stat.Mean(series, nil); !math.IsNaN(m) && !math.IsInf(m, 0) {
		return m
	}
	return FiniteOrZero(runningMean(series))
}

// runningMean averages without forming the full sum
func runningMean(series []float64) float64 {
	var m float64
	for i, v := range series {
		m += (v - m) / float64(i+1)
	}
	return m
}

// Variance returns the sample variance (Bessel's correction, divides by n-1).
// Series with fewer than 2 points, and series whose squared deviations
// overflow, have a variance of 0.
func Variance(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	return FiniteOrZero(stat.Variance(series, nil))
}

// StdDev returns the sample standard deviation of the series
func StdDev(series []float64) float64 {
	return math.Sqrt(Variance(series))
}

// Sum returns the sum of all values
func Sum(series []float64) float64 {
	return floats.Sum(series)
}

// Percentile calculates the p-th percentile of the series using linear
// interpolation between the two nearest ranks. p is clamped to [0, 100].
// The caller's slice is never reordered.
func Percentile(series []float64, p float64) float64 {
	if len(series) == 0 {
		return 0
	}

	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	return percentileSorted(sorted, p)
}

// Quartiles returns Q1, median and Q3 of the series
func Quartiles(series []float64) (q1, median, q3 float64) {
	if len(series) == 0 {
		return 0, 0, 0
	}

	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	return percentileSorted(sorted, 25), percentileSorted(sorted, 50), percentileSorted(sorted, 75)
}

// percentileSorted calculates the p-th percentile of already sorted data
func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	switch {
	case p <= 0 || math.IsNaN(p):
		p = 0
	case p > 100:
		p = 100
	}

	index := (p / 100) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// Linear interpolation
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// MovingAverage calculates a trailing moving average. Position i averages the
// last min(windowSize, i+1) points and never looks ahead. The result has the
// same length as the input.
func MovingAverage(series []float64, windowSize int) []float64 {
	if windowSize <= 0 {
		windowSize = 1
	}

	result := make([]float64, len(series))

	var sum float64
	for i, v := range series {
		sum += v
		if i >= windowSize {
			sum -= series[i-windowSize]
		}

		count := i + 1
		if count > windowSize {
			count = windowSize
		}
		result[i] = sum / float64(count)
	}

	return result
}

// FiniteOrZero maps NaN and ±Inf to 0 so they never reach callers
func FiniteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Clamp limits v to the [lo, hi] range
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
