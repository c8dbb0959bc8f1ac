package forecast

import (
	"math"

	"github.com/airopshq/airops/internal/analytics"
)

// Holt smoothing factors used when none are set
const (
	DefaultHoltAlpha = 0.5
	DefaultHoltBeta  = 0.3
)

// HoltForecaster implements double exponential smoothing (level and trend)
type HoltForecaster struct {
	Alpha float64 // level smoothing, (0, 1]
	Beta  float64 // trend smoothing, (0, 1]
}

// NewHoltForecaster creates a Holt forecaster with the default factors
func NewHoltForecaster() *HoltForecaster {
	return &HoltForecaster{Alpha: DefaultHoltAlpha, Beta: DefaultHoltBeta}
}

func init() {
	RegisterForecaster("holt", NewHoltForecaster())
}

// Name returns the algorithm name
func (f *HoltForecaster) Name() string {
	return "holt"
}

// Forecast generates a prediction using Holt's linear trend method
func (f *HoltForecaster) Forecast(series analytics.PeriodSeries, config Config) Result {
	result := Holt(series.Values(), periodsAhead(config), f.Alpha, f.Beta)
	result.TargetPeriod = targetPeriod(series, result.PeriodsAhead)
	return result
}

// Holt smooths level and trend over the series and extrapolates the trend
// periodsAhead periods. Confidence is 100 minus the MAPE of the one-step
// fitted values. The forecast is clamped at 0.
func Holt(values []float64, periodsAhead int, alpha, beta float64) Result {
	if periodsAhead <= 0 {
		periodsAhead = 1
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultHoltAlpha
	}
	if beta <= 0 || beta > 1 {
		beta = DefaultHoltBeta
	}
	if len(values) < MinDataPoints {
		return insufficientResult("holt", values, periodsAhead)
	}

	level := values[0]
	trend := values[1] - values[0]
	fitted := make([]float64, len(values))
	fitted[0] = values[0]

	for i := 1; i < len(values); i++ {
		fitted[i] = level + trend
		prevLevel := level
		level = alpha*values[i] + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
	}

	forecastValue := level + float64(periodsAhead)*trend

	direction := DirectionUpward
	if trend < 0 {
		direction = DirectionDownward
	}

	return Result{
		Method:            "holt",
		PeriodsAhead:      periodsAhead,
		Forecast:          math.Max(0, analytics.FiniteOrZero(forecastValue)),
		ConfidencePercent: analytics.Clamp(100-meanAbsPercentError(values[1:], fitted[1:]), 0, 100),
		TrendDirection:    direction,
		TrendStrength:     math.Abs(analytics.FiniteOrZero(trend)),
		DataPoints:        len(values),
	}
}

// meanAbsPercentError skips periods with zero actual revenue
func meanAbsPercentError(actual, fitted []float64) float64 {
	var sum float64
	var count int
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - fitted[i]) / actual[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return analytics.FiniteOrZero(sum / float64(count) * 100)
}
