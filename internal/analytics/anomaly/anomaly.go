// Package anomaly flags sharp revenue drops in the most recent period.
package anomaly

import (
	"github.com/airopshq/airops/internal/analytics"
)

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeDrop AnomalyType = "drop" // Sudden decrease against trailing history
)

// Severity represents how serious a detected anomaly is
type Severity string

const (
	SeverityNone Severity = "none"
	SeverityHigh Severity = "high"
)

// DefaultDropRatio triggers an anomaly when the latest value falls below half
// of the trailing two-period average.
const DefaultDropRatio = 0.5

// MinDataPoints is the number of recent periods the detector needs
const MinDataPoints = 3

// Result describes the outcome of a detection run
type Result struct {
	Detected         bool        `json:"detected"`
	Type             AnomalyType `json:"type,omitempty"`
	Severity         Severity    `json:"severity"`
	Period           string      `json:"period,omitempty"`
	CurrentValue     float64     `json:"current_value"`
	ExpectedValue    float64     `json:"expected_value"`
	DeviationPercent float64     `json:"deviation_percent"`
}

// DetectorConfig holds configuration for anomaly detection
type DetectorConfig struct {
	// DropRatio is the fraction of the expected value below which the latest
	// value is anomalous (default 0.5)
	DropRatio float64
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		DropRatio: DefaultDropRatio,
	}
}

// DropDetector compares the latest period with the average of the two before it.
// It holds only immutable configuration and is safe for concurrent use.
type DropDetector struct {
	config DetectorConfig
}

// NewDropDetector creates a detector; a non-positive DropRatio falls back to the default
func NewDropDetector(config DetectorConfig) *DropDetector {
	if config.DropRatio <= 0 {
		config.DropRatio = DefaultDropRatio
	}
	return &DropDetector{config: config}
}

// Name returns the algorithm name
func (d *DropDetector) Name() string {
	return "drop"
}

// Config returns the effective configuration
func (d *DropDetector) Config() DetectorConfig {
	return d.config
}

// Detect inspects values ordered most-recent-first: [last, secondLast, thirdLast, ...].
// Anything past the third value is ignored.
func (d *DropDetector) Detect(recentFirst []float64) Result {
	if len(recentFirst) < MinDataPoints {
		return Result{Severity: SeverityNone}
	}

	last := recentFirst[0]
	expected := (recentFirst[1] + recentFirst[2]) / 2

	if expected > 0 && last < expected*d.config.DropRatio {
		return Result{
			Detected:         true,
			Type:             AnomalyTypeDrop,
			Severity:         SeverityHigh,
			CurrentValue:     last,
			ExpectedValue:    expected,
			DeviationPercent: analytics.FiniteOrZero((last - expected) / expected * 100),
		}
	}

	return Result{
		Severity:      SeverityNone,
		CurrentValue:  last,
		ExpectedValue: expected,
	}
}

// DetectAll returns zero or one anomalies for the response envelope
func (d *DropDetector) DetectAll(recentFirst []float64) []Result {
	result := d.Detect(recentFirst)
	if !result.Detected {
		return []Result{}
	}
	return []Result{result}
}

// DetectSeries runs the detector over a chronological series and labels any
// anomaly with the period it was found in.
func (d *DropDetector) DetectSeries(series analytics.PeriodSeries) []Result {
	results := d.DetectAll(series.Latest(MinDataPoints))
	for i := range results {
		results[i].Period = series[len(series)-1].Period
	}
	return results
}

// FromChronological converts an earliest-first series into the
// most-recent-first window the detector expects.
func FromChronological(values []float64) []float64 {
	return analytics.MostRecentFirst(values, MinDataPoints)
}
