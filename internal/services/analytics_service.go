package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/airopshq/airops/internal/analytics"
	"github.com/airopshq/airops/internal/analytics/anomaly"
	"github.com/airopshq/airops/internal/analytics/forecast"
	"github.com/airopshq/airops/internal/analytics/recommend"
	"github.com/airopshq/airops/internal/analytics/report"
	"github.com/airopshq/airops/internal/cache"
	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/events"
	"github.com/airopshq/airops/internal/logging"
	"github.com/airopshq/airops/internal/storage"
)

// reportCacheNamespace prefixes cached revenue reports
const reportCacheNamespace = "revenue_report"

// AnalyticsServiceConfig holds the settings the service needs from the app config
type AnalyticsServiceConfig struct {
	Analytics     config.AnalyticsConfig
	CacheTTL      time.Duration
	SubjectPrefix string
	QueryTimeout  time.Duration
}

// AnalyticsService builds revenue reports from the data source
type AnalyticsService struct {
	logger    *logging.Logger
	source    storage.Source
	cache     cache.Cache
	publisher events.Publisher
	config    AnalyticsServiceConfig
	now       func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. A nil cache or
// publisher disables that concern.
func NewAnalyticsService(
	logger *logging.Logger,
	source storage.Source,
	reportCache cache.Cache,
	publisher events.Publisher,
	cfg AnalyticsServiceConfig,
) *AnalyticsService {
	if reportCache == nil {
		reportCache = cache.Noop{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &AnalyticsService{
		logger:    logger,
		source:    source,
		cache:     reportCache,
		publisher: publisher,
		config:    cfg,
		now:       time.Now,
	}
}

// RevenueReportRequest represents a revenue report request
type RevenueReportRequest struct {
	Periods      int    `json:"periods" query:"periods"`
	AirlineID    int64  `json:"airline_id" query:"airline_id"`
	Method       string `json:"method" query:"method"`
	PeriodsAhead int    `json:"periods_ahead" query:"periods_ahead"`
}

// ReportQuery echoes the effective request parameters
type ReportQuery struct {
	Periods      int    `json:"periods"`
	AirlineID    int64  `json:"airline_id,omitempty"`
	Method       string `json:"method"`
	PeriodsAhead int    `json:"periods_ahead"`
	Until        string `json:"until"`
}

// RevenueReportResponse is the report envelope plus the raw figures it was built from
type RevenueReportResponse struct {
	Query ReportQuery `json:"query"`
	report.Report
	Series      []storage.PeriodRevenue `json:"series"`
	Classes     []storage.ClassRevenue  `json:"classes"`
	Bookings    storage.BookingSummary  `json:"bookings"`
	GeneratedAt time.Time               `json:"generated_at"`
	Cached      bool                    `json:"cached"`
}

// Methods returns the registered forecast methods
func (s *AnalyticsService) Methods() []string {
	return forecast.ListForecasters()
}

// DefaultMethod is the forecast method used when a request names none
func (s *AnalyticsService) DefaultMethod() string {
	return s.config.Analytics.ForecastMethod
}

// RevenueReport validates the request and returns the revenue report,
// from cache when possible.
func (s *AnalyticsService) RevenueReport(ctx context.Context, req RevenueReportRequest) (*RevenueReportResponse, error) {
	start := s.now()
	logger := s.logger.WithContext(ctx)

	query, err := s.normalize(req, start)
	if err != nil {
		return nil, err
	}

	cacheKey, err := cache.Key(reportCacheNamespace, query)
	if err != nil {
		return nil, fmt.Errorf("build cache key: %w", err)
	}

	if cached, ok := s.fromCache(ctx, logger, cacheKey); ok {
		logger.Debug("Revenue report served from cache", "periods", query.Periods, "airline_id", query.AirlineID)
		return cached, nil
	}

	resp, err := s.build(ctx, query)
	if err != nil {
		logger.Error("Revenue report failed", "error", err, "periods", query.Periods, "airline_id", query.AirlineID)
		return nil, err
	}

	s.toCache(ctx, logger, cacheKey, resp)
	s.publish(ctx, logger, query, resp)

	logger.Info("Revenue report generated",
		"periods", query.Periods,
		"airline_id", query.AirlineID,
		"method", query.Method,
		"anomalies", len(resp.Anomalies),
		"recommendations", len(resp.Recommendations),
		"duration", time.Since(start),
	)

	return resp, nil
}

// normalize applies defaults and validates the request
func (s *AnalyticsService) normalize(req RevenueReportRequest, now time.Time) (ReportQuery, error) {
	cfg := s.config.Analytics

	periods := req.Periods
	if periods == 0 {
		periods = cfg.DefaultPeriods
	}
	if periods < 1 || periods > cfg.MaxPeriods {
		return ReportQuery{}, invalidRequest(
			fmt.Sprintf("periods must be between 1 and %d", cfg.MaxPeriods),
			map[string]interface{}{"periods": req.Periods},
		)
	}

	if req.AirlineID < 0 {
		return ReportQuery{}, invalidRequest("airline_id cannot be negative", map[string]interface{}{"airline_id": req.AirlineID})
	}

	ahead := req.PeriodsAhead
	if ahead == 0 {
		ahead = 1
	}
	if ahead < 1 || ahead > cfg.MaxPeriodsAhead {
		return ReportQuery{}, invalidRequest(
			fmt.Sprintf("periods_ahead must be between 1 and %d", cfg.MaxPeriodsAhead),
			map[string]interface{}{"periods_ahead": req.PeriodsAhead},
		)
	}

	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = cfg.ForecastMethod
	}
	if _, err := forecast.GetForecaster(method); err != nil {
		return ReportQuery{}, NewServiceErrorWithDetails(ErrCodeInvalidMethod, err.Error(), map[string]interface{}{
			"available_methods": forecast.ListForecasters(),
		})
	}

	return ReportQuery{
		Periods:      periods,
		AirlineID:    req.AirlineID,
		Method:       method,
		PeriodsAhead: ahead,
		Until:        now.UTC().Format(storage.PeriodLayout),
	}, nil
}

// build loads the figures and runs the pipeline
func (s *AnalyticsService) build(ctx context.Context, query ReportQuery) (*RevenueReportResponse, error) {
	if s.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.QueryTimeout)
		defer cancel()
	}

	until, err := time.Parse(storage.PeriodLayout, query.Until)
	if err != nil {
		return nil, fmt.Errorf("parse until: %w", err)
	}
	revenueQuery := storage.RevenueQuery{
		Periods:   query.Periods,
		AirlineID: query.AirlineID,
		Until:     until,
	}

	var (
		series   []storage.PeriodRevenue
		classes  []storage.ClassRevenue
		bookings storage.BookingSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.source.MonthlyRevenue(gctx, revenueQuery)
		if err != nil {
			return sourceUnavailable("monthly revenue", err)
		}
		series = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.source.ClassBreakdown(gctx, revenueQuery)
		if err != nil {
			return sourceUnavailable("class breakdown", err)
		}
		classes = rows
		return nil
	})
	g.Go(func() error {
		summary, err := s.source.BookingSummary(gctx, revenueQuery)
		if err != nil {
			return sourceUnavailable("booking summary", err)
		}
		bookings = summary
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pipeline, err := report.NewPipeline(s.pipelineConfig(query))
	if err != nil {
		return nil, NewServiceError(ErrCodeInvalidMethod, err.Error())
	}

	built := pipeline.Build(ReportInput(series, classes, bookings))

	return &RevenueReportResponse{
		Query:       query,
		Report:      built,
		Series:      series,
		Classes:     classes,
		Bookings:    bookings,
		GeneratedAt: s.now().UTC(),
	}, nil
}

func (s *AnalyticsService) pipelineConfig(query ReportQuery) report.Config {
	cfg := s.config.Analytics
	return report.Config{
		Method:              query.Method,
		PeriodsAhead:        query.PeriodsAhead,
		MovingAverageWindow: cfg.MovingAverageWindow,
		Anomaly:             anomaly.DetectorConfig{DropRatio: cfg.AnomalyDropRatio},
		Recommend: recommend.Config{
			PremiumClasses:        cfg.PremiumClasses,
			ShareThresholdPercent: cfg.ShareThresholdPercent,
			DeclineRatio:          cfg.DeclineRatio,
			LowTicketValue:        cfg.LowTicketValue,
		},
	}
}

// ReportInput converts source rows into pipeline input. Money is converted
// to float64 only here, at the analytics boundary.
func ReportInput(series []storage.PeriodRevenue, classes []storage.ClassRevenue, bookings storage.BookingSummary) report.Input {
	points := make(analytics.PeriodSeries, len(series))
	for i, row := range series {
		points[i] = analytics.PeriodPoint{Period: row.Period, Value: row.Revenue.InexactFloat64()}
	}

	shares := make([]recommend.ClassShare, len(classes))
	for i, row := range classes {
		shares[i] = recommend.ClassShare{Class: row.Class, Revenue: row.Revenue.InexactFloat64()}
	}

	return report.Input{
		Series:             points,
		Classes:            shares,
		AverageTicketValue: bookings.AverageTicketValue.InexactFloat64(),
	}
}

func (s *AnalyticsService) fromCache(ctx context.Context, logger *logging.Logger, key string) (*RevenueReportResponse, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Report cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var resp RevenueReportResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warn("Discarding undecodable cached report", "error", err)
		return nil, false
	}
	resp.Cached = true
	return &resp, true
}

func (s *AnalyticsService) toCache(ctx context.Context, logger *logging.Logger, key string, resp *RevenueReportResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Warn("Failed to encode report for cache", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.config.CacheTTL); err != nil {
		logger.Warn("Report cache write failed", "error", err)
	}
}

// anomalyEvent is the payload of an anomaly event
type anomalyEvent struct {
	AirlineID int64          `json:"airline_id,omitempty"`
	Anomaly   anomaly.Result `json:"anomaly"`
}

// recommendationEvent is the payload of a high-priority recommendation event
type recommendationEvent struct {
	AirlineID      int64                    `json:"airline_id,omitempty"`
	Period         string                   `json:"period"`
	Recommendation recommend.Recommendation `json:"recommendation"`
}

// publish emits anomaly and high-priority recommendation events.
// Failures are logged and never fail the request.
func (s *AnalyticsService) publish(ctx context.Context, logger *logging.Logger, query ReportQuery, resp *RevenueReportResponse) {
	requestID := logging.RequestIDFromContext(ctx)
	prefix := s.config.SubjectPrefix

	var messages []events.Message
	for _, a := range resp.Anomalies {
		msg, err := events.NewMessage(prefix, events.TypeAnomaly, requestID, anomalyEvent{AirlineID: query.AirlineID, Anomaly: a})
		if err != nil {
			logger.Warn("Failed to encode anomaly event", "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	for _, r := range resp.Recommendations {
		if r.Priority != recommend.PriorityHigh {
			continue
		}
		msg, err := events.NewMessage(prefix, events.TypeRecommendation, requestID, recommendationEvent{
			AirlineID:      query.AirlineID,
			Period:         resp.Summary.LastPeriod,
			Recommendation: r,
		})
		if err != nil {
			logger.Warn("Failed to encode recommendation event", "error", err)
			continue
		}
		messages = append(messages, msg)
	}

	if len(messages) == 0 {
		return
	}

	published, err := s.publisher.PublishBatch(ctx, messages)
	if err != nil {
		logger.Warn("Failed to publish analytics events", "error", err, "published", published, "total", len(messages))
		return
	}
	logger.Debug("Published analytics events", "count", published)
}
