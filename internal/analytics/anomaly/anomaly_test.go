package anomaly

import (
	"math"
	"testing"

	"github.com/airopshq/airops/internal/analytics"
)

func TestDropDetector_Detect(t *testing.T) {
	detector := NewDropDetector(DefaultConfig())

	tests := []struct {
		name         string
		recentFirst  []float64
		wantDetected bool
		wantExpected float64
		wantDev      float64
	}{
		{
			name:         "sharp drop triggers",
			recentFirst:  []float64{10, 100, 100},
			wantDetected: true,
			wantExpected: 100,
			wantDev:      -90,
		},
		{
			name:         "moderate drop does not trigger",
			recentFirst:  []float64{60, 100, 100},
			wantDetected: false,
			wantExpected: 100,
		},
		{
			name:         "exactly half does not trigger",
			recentFirst:  []float64{50, 100, 100},
			wantDetected: false,
			wantExpected: 100,
		},
		{
			name:         "zero expected never triggers",
			recentFirst:  []float64{0, 0, 0},
			wantDetected: false,
			wantExpected: 0,
		},
		{
			name:         "uses trailing two-period average",
			recentFirst:  []float64{30, 80, 40},
			wantDetected: true,
			wantExpected: 60,
			wantDev:      -50,
		},
		{
			name:         "extra history ignored",
			recentFirst:  []float64{10, 100, 100, 1, 1, 1},
			wantDetected: true,
			wantExpected: 100,
			wantDev:      -90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detector.Detect(tt.recentFirst)

			if result.Detected != tt.wantDetected {
				t.Fatalf("Detected = %v, want %v", result.Detected, tt.wantDetected)
			}
			if math.Abs(result.ExpectedValue-tt.wantExpected) > 1e-9 {
				t.Errorf("ExpectedValue = %v, want %v", result.ExpectedValue, tt.wantExpected)
			}
			if tt.wantDetected {
				if result.Severity != SeverityHigh {
					t.Errorf("Severity = %s, want high", result.Severity)
				}
				if result.Type != AnomalyTypeDrop {
					t.Errorf("Type = %s, want drop", result.Type)
				}
				if math.Abs(result.DeviationPercent-tt.wantDev) > 1e-9 {
					t.Errorf("DeviationPercent = %v, want %v", result.DeviationPercent, tt.wantDev)
				}
			} else if result.Severity != SeverityNone {
				t.Errorf("Severity = %s, want none", result.Severity)
			}
		})
	}
}

func TestDropDetector_InsufficientData(t *testing.T) {
	detector := NewDropDetector(DefaultConfig())

	for _, values := range [][]float64{nil, {1}, {1, 100}} {
		result := detector.Detect(values)
		if result.Detected || result.Severity != SeverityNone {
			t.Errorf("Detect(%v) = %+v, want no anomaly", values, result)
		}
		if len(detector.DetectAll(values)) != 0 {
			t.Errorf("DetectAll(%v) should be empty", values)
		}
	}
}

func TestDropDetector_CustomRatio(t *testing.T) {
	detector := NewDropDetector(DetectorConfig{DropRatio: 0.7})

	if !detector.Detect([]float64{60, 100, 100}).Detected {
		t.Error("60 < 0.7*100 should trigger with a 0.7 ratio")
	}
}

func TestNewDropDetector_DefaultsRatio(t *testing.T) {
	detector := NewDropDetector(DetectorConfig{})
	if detector.Config().DropRatio != DefaultDropRatio {
		t.Errorf("DropRatio = %v, want %v", detector.Config().DropRatio, DefaultDropRatio)
	}
	if detector.Name() != "drop" {
		t.Errorf("Name = %q, want drop", detector.Name())
	}
}

func TestDropDetector_DetectAll(t *testing.T) {
	detector := NewDropDetector(DefaultConfig())

	if got := detector.DetectAll([]float64{10, 100, 100}); len(got) != 1 {
		t.Errorf("DetectAll should return one anomaly, got %d", len(got))
	}
	if got := detector.DetectAll([]float64{90, 100, 100}); got == nil || len(got) != 0 {
		t.Errorf("DetectAll should return an empty non-nil slice, got %v", got)
	}
}

func TestDropDetector_DetectSeries(t *testing.T) {
	detector := NewDropDetector(DefaultConfig())
	series := analytics.PeriodSeries{
		{Period: "2026-01", Value: 100},
		{Period: "2026-02", Value: 100},
		{Period: "2026-03", Value: 10},
	}

	results := detector.DetectSeries(series)
	if len(results) != 1 {
		t.Fatalf("Expected one anomaly, got %d", len(results))
	}
	if results[0].Period != "2026-03" {
		t.Errorf("Period = %q, want 2026-03", results[0].Period)
	}
	if results[0].CurrentValue != 10 {
		t.Errorf("CurrentValue = %v, want 10", results[0].CurrentValue)
	}
}

func TestFromChronological(t *testing.T) {
	got := FromChronological([]float64{1, 2, 100, 100, 10})
	expected := []float64{10, 100, 100}

	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("FromChronological = %v, want %v", got, expected)
		}
	}
}
