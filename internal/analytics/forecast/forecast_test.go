package forecast

import (
	"testing"

	"github.com/airopshq/airops/internal/analytics"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.PeriodsAhead != 1 {
		t.Errorf("Expected PeriodsAhead 1, got %d", config.PeriodsAhead)
	}
}

func TestSeasonalMultipliers(t *testing.T) {
	// Two years; every December doubles the usual 100.
	var values []float64
	for year := 0; year < 2; year++ {
		for month := 1; month <= 12; month++ {
			if month == 12 {
				values = append(values, 200)
			} else {
				values = append(values, 100)
			}
		}
	}
	series := monthlySeries(values...)

	multipliers := SeasonalMultipliers(series)

	if len(multipliers) != 12 {
		t.Fatalf("Expected 12 multipliers, got %d", len(multipliers))
	}

	overall := 1300.0 / 12.0
	assertClose(t, "December", multipliers[12], 200/overall, 1e-9)
	assertClose(t, "January", multipliers[1], 100/overall, 1e-9)
}

func TestSeasonalMultipliers_Fallbacks(t *testing.T) {
	tests := []struct {
		name   string
		series analytics.PeriodSeries
	}{
		{name: "empty", series: nil},
		{name: "unparseable labels", series: analytics.PeriodSeries{{Period: "Q1", Value: 10}, {Period: "Q2", Value: 20}}},
		{name: "zero average", series: monthlySeries(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			multipliers := SeasonalMultipliers(tt.series)
			for month := 1; month <= 12; month++ {
				if multipliers[month] != 1.0 {
					t.Errorf("month %d multiplier = %v, want 1.0", month, multipliers[month])
				}
			}
		})
	}
}

func TestSeasonalMultipliers_MissingMonthsNeutral(t *testing.T) {
	series := monthlySeries(100, 200, 300) // Jan..Mar 2025

	multipliers := SeasonalMultipliers(series)

	assertClose(t, "January", multipliers[1], 0.5, 1e-9)
	assertClose(t, "March", multipliers[3], 1.5, 1e-9)
	if multipliers[7] != 1.0 {
		t.Errorf("July without data should be 1.0, got %v", multipliers[7])
	}
}

func TestSeasonalForecaster(t *testing.T) {
	// Jan..Mar 2025 at 100/200/300, forecasting March 2025 + 12 months = March 2026
	series := monthlySeries(100, 200, 300)

	forecaster, err := GetForecaster("seasonal")
	if err != nil {
		t.Fatalf("seasonal forecaster not registered: %v", err)
	}

	result := forecaster.Forecast(series, Config{PeriodsAhead: 12})

	if result.Method != "seasonal" {
		t.Errorf("Expected method 'seasonal', got %q", result.Method)
	}
	if result.TargetPeriod != "2026-03" {
		t.Errorf("Expected target 2026-03, got %q", result.TargetPeriod)
	}
	assertClose(t, "SeasonalMultiplier", result.SeasonalMultiplier, 1.5, 1e-9)

	linear := Linear(series.Values(), 12)
	assertClose(t, "Forecast", result.Forecast, linear.Forecast*1.5, 1e-6)
	assertClose(t, "ConfidencePercent", result.ConfidencePercent, linear.ConfidencePercent, 1e-9)
}

func TestSeasonalForecaster_NegativeMonthNeverGoesNegative(t *testing.T) {
	// Jan..Dec 2025 at 100 except a refund-heavy February of -50
	values := []float64{100, -50, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100}
	series := monthlySeries(values...)

	multipliers := SeasonalMultipliers(series)
	if multipliers[2] != 0 {
		t.Errorf("February multiplier = %v, want 0", multipliers[2])
	}
	for month, m := range multipliers {
		if m < 0 {
			t.Errorf("multiplier for month %d is negative: %v", month, m)
		}
	}

	// Dec 2025 + 2 months = Feb 2026
	result := NewSeasonalForecaster().Forecast(series, Config{PeriodsAhead: 2})
	if result.TargetPeriod != "2026-02" {
		t.Fatalf("Expected target 2026-02, got %q", result.TargetPeriod)
	}
	if result.Forecast != 0 {
		t.Errorf("Forecast = %v, want 0", result.Forecast)
	}
	if result.SeasonalMultiplier != 0 {
		t.Errorf("SeasonalMultiplier = %v, want 0", result.SeasonalMultiplier)
	}

	for ahead := 1; ahead <= 12; ahead++ {
		if r := NewSeasonalForecaster().Forecast(series, Config{PeriodsAhead: ahead}); r.Forecast < 0 {
			t.Errorf("ahead %d: forecast %v is negative", ahead, r.Forecast)
		}
	}
}

func TestSeasonalForecaster_InsufficientData(t *testing.T) {
	result := NewSeasonalForecaster().Forecast(monthlySeries(10, 20), DefaultConfig())

	if result.Forecast != 20 || result.ConfidencePercent != 0 {
		t.Errorf("Expected last-value fallback with zero confidence, got %+v", result)
	}
	if result.SeasonalMultiplier != 0 {
		t.Errorf("Multiplier should not be applied to fallback, got %v", result.SeasonalMultiplier)
	}
}

func TestTargetPeriod(t *testing.T) {
	tests := []struct {
		name     string
		series   analytics.PeriodSeries
		ahead    int
		expected string
	}{
		{name: "next month", series: analytics.PeriodSeries{{Period: "2026-03"}}, ahead: 1, expected: "2026-04"},
		{name: "year wrap", series: analytics.PeriodSeries{{Period: "2025-12"}}, ahead: 1, expected: "2026-01"},
		{name: "date label end of month", series: analytics.PeriodSeries{{Period: "2026-01-31"}}, ahead: 1, expected: "2026-02"},
		{name: "unparseable", series: analytics.PeriodSeries{{Period: "week-7"}}, ahead: 1, expected: ""},
		{name: "empty", series: nil, ahead: 1, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := targetPeriod(tt.series, tt.ahead); got != tt.expected {
				t.Errorf("targetPeriod = %q, want %q", got, tt.expected)
			}
		})
	}
}
