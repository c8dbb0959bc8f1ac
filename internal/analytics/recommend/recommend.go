// Package recommend turns analytics outputs into rule-based advisory messages.
package recommend

import (
	"fmt"
	"math"
	"strings"
)

// Priority ranks how urgently a recommendation should be acted upon
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Impact estimates the revenue effect of following a recommendation
type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactMedium   Impact = "medium"
	ImpactHigh     Impact = "high"
	ImpactCritical Impact = "critical"
)

// Recommendation types
const (
	TypeClassOptimization = "class_optimization"
	TypeDecliningTrend    = "declining_trend"
	TypeTicketValue       = "ticket_value"
)

// Recommendation is a single advisory message
type Recommendation struct {
	Type            string   `json:"type"`
	Priority        Priority `json:"priority"`
	Message         string   `json:"message"`
	Action          string   `json:"action"`
	PotentialImpact Impact   `json:"potential_impact"`
}

// ClassShare is the revenue attributed to one fare class
type ClassShare struct {
	Class   string  `json:"class"`
	Revenue float64 `json:"revenue"`
}

// Input carries the summarized figures the rules look at
type Input struct {
	// Classes is evaluated in slice order
	Classes []ClassShare
	// Series is the chronological per-period revenue
	Series []float64
	// AverageTicketValue is total revenue divided by bookings, 0 when there are none
	AverageTicketValue float64
}

// Config holds the rule thresholds
type Config struct {
	PremiumClasses        []string
	ShareThresholdPercent float64
	DeclineRatio          float64
	LowTicketValue        float64
}

// DefaultConfig returns the default rule thresholds
func DefaultConfig() Config {
	return Config{
		PremiumClasses:        []string{"business", "first"},
		ShareThresholdPercent: 10,
		DeclineRatio:          0.1,
		LowTicketValue:        10000,
	}
}

// Engine evaluates every rule independently and appends results in rule order
type Engine struct {
	config  Config
	premium map[string]struct{}
}

// NewEngine creates an engine; zero thresholds fall back to defaults
func NewEngine(config Config) *Engine {
	defaults := DefaultConfig()
	if config.PremiumClasses == nil {
		config.PremiumClasses = defaults.PremiumClasses
	}
	if config.ShareThresholdPercent <= 0 {
		config.ShareThresholdPercent = defaults.ShareThresholdPercent
	}
	if config.DeclineRatio <= 0 {
		config.DeclineRatio = defaults.DeclineRatio
	}
	if config.LowTicketValue <= 0 {
		config.LowTicketValue = defaults.LowTicketValue
	}

	premium := make(map[string]struct{}, len(config.PremiumClasses))
	for _, class := range config.PremiumClasses {
		premium[normalizeClass(class)] = struct{}{}
	}

	return &Engine{config: config, premium: premium}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.config
}

// Generate runs all rules. The result is never nil.
func (e *Engine) Generate(input Input) []Recommendation {
	recommendations := make([]Recommendation, 0, 3)
	recommendations = append(recommendations, e.classOptimization(input.Classes)...)
	if rec, ok := e.decliningTrend(input.Series); ok {
		recommendations = append(recommendations, rec)
	}
	if rec, ok := e.ticketValue(input.AverageTicketValue); ok {
		recommendations = append(recommendations, rec)
	}
	return recommendations
}

func (e *Engine) classOptimization(classes []ClassShare) []Recommendation {
	total := 0.0
	for _, c := range classes {
		total += c.Revenue
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil
	}

	var recs []Recommendation
	for _, c := range classes {
		if _, ok := e.premium[normalizeClass(c.Class)]; !ok {
			continue
		}
		share := c.Revenue / total * 100
		if share >= e.config.ShareThresholdPercent {
			continue
		}
		recs = append(recs, Recommendation{
			Type:     TypeClassOptimization,
			Priority: PriorityMedium,
			Message: fmt.Sprintf("%s class contributes only %.1f%% of revenue",
				displayClass(c.Class), share),
			Action:          "review_class_pricing",
			PotentialImpact: ImpactMedium,
		})
	}
	return recs
}

func (e *Engine) decliningTrend(series []float64) (Recommendation, bool) {
	if len(series) < 3 {
		return Recommendation{}, false
	}
	p := series[len(series)-3:]
	change := p[2] - p[0]
	if change >= 0 || math.Abs(change) <= e.config.DeclineRatio*p[0] {
		return Recommendation{}, false
	}

	pct := 0.0
	if p[0] != 0 {
		pct = math.Abs(change) / p[0] * 100
	}
	return Recommendation{
		Type:            TypeDecliningTrend,
		Priority:        PriorityHigh,
		Message:         fmt.Sprintf("Revenue fell %.1f%% over the last three periods", pct),
		Action:          "launch_promotional_campaign",
		PotentialImpact: ImpactHigh,
	}, true
}

func (e *Engine) ticketValue(average float64) (Recommendation, bool) {
	if average <= 0 || average >= e.config.LowTicketValue {
		return Recommendation{}, false
	}
	return Recommendation{
		Type:     TypeTicketValue,
		Priority: PriorityLow,
		Message: fmt.Sprintf("Average ticket value %.2f is below the %.0f target",
			average, e.config.LowTicketValue),
		Action:          "promote_upsell_packages",
		PotentialImpact: ImpactMedium,
	}, true
}

func normalizeClass(class string) string {
	return strings.ToLower(strings.TrimSpace(class))
}

func displayClass(class string) string {
	c := normalizeClass(class)
	if c == "" {
		return "Unknown"
	}
	return strings.ToUpper(c[:1]) + c[1:]
}
