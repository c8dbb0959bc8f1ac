package forecast

import (
	"fmt"
	"sort"

	"github.com/airopshq/airops/internal/analytics"
)

// Direction is the sign of the fitted trend line
type Direction string

const (
	DirectionUpward   Direction = "upward"
	DirectionDownward Direction = "downward"
)

// MinDataPoints is the minimum number of periods needed for a regression
const MinDataPoints = 3

// Result contains a forecast for a single future period
type Result struct {
	Method             string    `json:"method"`
	PeriodsAhead       int       `json:"periods_ahead"`
	TargetPeriod       string    `json:"target_period,omitempty"`
	Forecast           float64   `json:"forecast"`
	ConfidencePercent  float64   `json:"confidence_percent"`
	TrendDirection     Direction `json:"trend_direction"`
	TrendStrength      float64   `json:"trend_strength"`
	SeasonalMultiplier float64   `json:"seasonal_multiplier,omitempty"`
	DataPoints         int       `json:"data_points"`
}

// Config holds configuration for forecasting
type Config struct {
	PeriodsAhead int // Number of periods past the last observation (default: 1)
}

// DefaultConfig returns default forecast configuration
func DefaultConfig() Config {
	return Config{
		PeriodsAhead: 1,
	}
}

// Forecaster interface for all forecasting algorithms
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast predicts the value PeriodsAhead periods after the last point.
	// It never fails: short or degenerate input yields a zero-confidence result.
	Forecast(series analytics.PeriodSeries, config Config) Result
}

// Registry holds available forecasters
var forecasterRegistry = make(map[string]Forecaster)

// RegisterForecaster adds a forecaster to the registry
func RegisterForecaster(name string, forecaster Forecaster) {
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name
func GetForecaster(name string) (Forecaster, error) {
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	return nil, fmt.Errorf("unknown forecaster: %s", name)
}

// ListForecasters returns the sorted list of available forecaster names
func ListForecasters() []string {
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// periodsAhead normalises the horizon from config
func periodsAhead(config Config) int {
	if config.PeriodsAhead <= 0 {
		return 1
	}
	return config.PeriodsAhead
}

// insufficientResult is returned when the series is too short to fit a line
func insufficientResult(method string, values []float64, ahead int) Result {
	var last float64
	if len(values) > 0 {
		last = values[len(values)-1]
	}
	return Result{
		Method:         method,
		PeriodsAhead:   ahead,
		Forecast:       last,
		TrendDirection: DirectionUpward,
		DataPoints:     len(values),
	}
}
