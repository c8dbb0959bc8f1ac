// Package report composes the analytics primitives into the revenue report envelope.
//
// The pipeline is pure: it never touches a data store, cache or broker, so the
// same Input always produces an identical Report.
package report

import (
	"fmt"

	"github.com/airopshq/airops/internal/analytics"
	"github.com/airopshq/airops/internal/analytics/anomaly"
	"github.com/airopshq/airops/internal/analytics/forecast"
	"github.com/airopshq/airops/internal/analytics/growth"
	"github.com/airopshq/airops/internal/analytics/recommend"
)

const (
	// DefaultMovingAverageWindow is the trailing window used in the summary
	DefaultMovingAverageWindow = 3
	// DefaultMethod is the forecaster used when none is configured
	DefaultMethod = "linear"
	// yearOverYearPoints is the series length needed to compare with the same period last year
	yearOverYearPoints = 13
)

// Input is everything the pipeline needs, already loaded from the source
type Input struct {
	Series             analytics.PeriodSeries
	Classes            []recommend.ClassShare
	AverageTicketValue float64
}

// Summary holds descriptive statistics of the series
type Summary struct {
	Periods       int          `json:"periods"`
	FirstPeriod   string       `json:"first_period,omitempty"`
	LastPeriod    string       `json:"last_period,omitempty"`
	Total         float64      `json:"total"`
	Mean          float64      `json:"mean"`
	Variance      float64      `json:"variance"`
	StdDev        float64      `json:"std_dev"`
	P25           float64      `json:"p25"`
	P50           float64      `json:"p50"`
	P75           float64      `json:"p75"`
	MovingAverage []float64    `json:"moving_average"`
	GrowthRates   []float64    `json:"growth_rates"`
	Trend         growth.Trend `json:"trend"`
}

// PredictiveInsights holds the forecast and the calendar-month multipliers
type PredictiveInsights struct {
	Forecast            forecast.Result `json:"forecast"`
	SeasonalMultipliers map[int]float64 `json:"seasonal_multipliers"`
}

// ComparativeAnalysis compares the latest period with earlier ones
type ComparativeAnalysis struct {
	PeriodOverPeriod *growth.Result `json:"period_over_period,omitempty"`
	YearOverYear     *growth.Result `json:"year_over_year,omitempty"`
}

// Report is the response envelope
type Report struct {
	Summary             Summary                    `json:"summary"`
	PredictiveInsights  PredictiveInsights         `json:"predictive_insights"`
	Recommendations     []recommend.Recommendation `json:"recommendations"`
	ComparativeAnalysis ComparativeAnalysis        `json:"comparative_analysis"`
	Anomalies           []anomaly.Result           `json:"anomalies"`
}

// Config configures a Pipeline
type Config struct {
	Method              string
	PeriodsAhead        int
	MovingAverageWindow int
	Anomaly             anomaly.DetectorConfig
	Recommend           recommend.Config
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() Config {
	return Config{
		Method:              DefaultMethod,
		PeriodsAhead:        forecast.DefaultConfig().PeriodsAhead,
		MovingAverageWindow: DefaultMovingAverageWindow,
		Anomaly:             anomaly.DefaultConfig(),
		Recommend:           recommend.DefaultConfig(),
	}
}

// Pipeline wires the forecaster, detector and recommendation engine together.
// It holds no mutable state and may be shared between goroutines.
type Pipeline struct {
	config     Config
	forecaster forecast.Forecaster
	detector   *anomaly.DropDetector
	engine     *recommend.Engine
}

// NewPipeline creates a pipeline. It fails only for an unknown forecast method.
func NewPipeline(config Config) (*Pipeline, error) {
	if config.Method == "" {
		config.Method = DefaultMethod
	}
	if config.PeriodsAhead <= 0 {
		config.PeriodsAhead = 1
	}
	if config.MovingAverageWindow <= 0 {
		config.MovingAverageWindow = DefaultMovingAverageWindow
	}

	forecaster, err := forecast.GetForecaster(config.Method)
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	return &Pipeline{
		config:     config,
		forecaster: forecaster,
		detector:   anomaly.NewDropDetector(config.Anomaly),
		engine:     recommend.NewEngine(config.Recommend),
	}, nil
}

// Config returns the effective configuration
func (p *Pipeline) Config() Config {
	return p.config
}

// Build runs every stage over the input
func (p *Pipeline) Build(input Input) Report {
	values := input.Series.Values()

	return Report{
		Summary: p.summarize(input.Series, values),
		PredictiveInsights: PredictiveInsights{
			Forecast:            p.forecaster.Forecast(input.Series, forecast.Config{PeriodsAhead: p.config.PeriodsAhead}),
			SeasonalMultipliers: forecast.SeasonalMultipliers(input.Series),
		},
		Recommendations: p.engine.Generate(recommend.Input{
			Classes:            input.Classes,
			Series:             values,
			AverageTicketValue: input.AverageTicketValue,
		}),
		ComparativeAnalysis: compare(values),
		Anomalies:           p.detector.DetectSeries(input.Series),
	}
}

func (p *Pipeline) summarize(series analytics.PeriodSeries, values []float64) Summary {
	q1, median, q3 := analytics.Quartiles(values)

	summary := Summary{
		Periods:       len(values),
		Total:         analytics.Sum(values),
		Mean:          analytics.Mean(values),
		Variance:      analytics.Variance(values),
		StdDev:        analytics.StdDev(values),
		P25:           q1,
		P50:           median,
		P75:           q3,
		MovingAverage: analytics.MovingAverage(values, p.config.MovingAverageWindow),
		GrowthRates:   growth.Rates(values),
		Trend:         growth.ClassifyTrend(values),
	}
	if len(series) > 0 {
		summary.FirstPeriod = series[0].Period
		summary.LastPeriod = series[len(series)-1].Period
	}
	return summary
}

func compare(values []float64) ComparativeAnalysis {
	var analysis ComparativeAnalysis
	n := len(values)
	if n >= 2 {
		pop := growth.Compare(values[n-1], values[n-2])
		analysis.PeriodOverPeriod = &pop
	}
	if n >= yearOverYearPoints {
		yoy := growth.Compare(values[n-1], values[n-yearOverYearPoints])
		analysis.YearOverYear = &yoy
	}
	return analysis
}
