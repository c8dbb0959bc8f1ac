package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/airopshq/airops/internal/analytics"
)

// LinearRegressionForecaster implements ordinary least squares forecasting
type LinearRegressionForecaster struct{}

// NewLinearRegressionForecaster creates a new Linear Regression forecaster
func NewLinearRegressionForecaster() *LinearRegressionForecaster {
	return &LinearRegressionForecaster{}
}

func init() {
	RegisterForecaster("linear", NewLinearRegressionForecaster())
}

// Name returns the algorithm name
func (f *LinearRegressionForecaster) Name() string {
	return "linear"
}

// Forecast generates a prediction using Linear Regression
func (f *LinearRegressionForecaster) Forecast(series analytics.PeriodSeries, config Config) Result {
	result := Linear(series.Values(), periodsAhead(config))
	result.TargetPeriod = targetPeriod(series, result.PeriodsAhead)
	return result
}

// Fit holds the fitted line over x = 1..n
type Fit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// FitLine fits y = intercept + slope*x with x = 1..n.
// R² is 0 when every observation is identical.
func FitLine(values []float64) Fit {
	n := len(values)
	if n < 2 {
		return Fit{}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i + 1)
	}

	intercept, slope := stat.LinearRegression(xs, values, nil, false)
	intercept = analytics.FiniteOrZero(intercept)
	slope = analytics.FiniteOrZero(slope)

	var rSquared float64
	if analytics.Variance(values) > 0 {
		rSquared = analytics.FiniteOrZero(stat.RSquared(xs, values, nil, intercept, slope))
	}

	return Fit{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  rSquared,
	}
}

// Linear forecasts the value periodsAhead periods after the last observation.
// Revenue cannot be negative, so the forecast is clamped at 0.
func Linear(values []float64, periodsAhead int) Result {
	if periodsAhead <= 0 {
		periodsAhead = 1
	}
	if len(values) < MinDataPoints {
		return insufficientResult("linear", values, periodsAhead)
	}

	fit := FitLine(values)
	n := float64(len(values))

	forecastValue := fit.Intercept + fit.Slope*(n+float64(periodsAhead))

	direction := DirectionUpward
	if fit.Slope < 0 {
		direction = DirectionDownward
	}

	return Result{
		Method:            "linear",
		PeriodsAhead:      periodsAhead,
		Forecast:          math.Max(0, analytics.FiniteOrZero(forecastValue)),
		ConfidencePercent: analytics.Clamp(fit.RSquared*100, 0, 100),
		TrendDirection:    direction,
		TrendStrength:     math.Abs(fit.Slope),
		DataPoints:        len(values),
	}
}
